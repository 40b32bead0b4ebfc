package def

import "github.com/bwmarrin/discordgo"

// CooldownCommand shows the caller how long until their next ad can be published.
var CooldownCommand = &discordgo.ApplicationCommand{
	Name:        "cooldown",
	Description: "Сколько ждать до следующей публикации",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.Russian: "ожидание",
	},
}
