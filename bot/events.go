package bot

import "github.com/bwmarrin/discordgo"

// Intents needed to read submissions in guild channels and direct messages.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsDirectMessages |
	discordgo.IntentsMessageContent

func registerEventHandlers(s *discordgo.Session, handlers ...interface{}) {
	for _, h := range handlers {
		s.AddHandler(h)
	}

	// MessageContent is privileged and must be enabled in the developer portal.
	s.Identify.Intents = Intents
}
