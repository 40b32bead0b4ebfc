package def

import "github.com/bwmarrin/discordgo"

var adminPermissions int64 = discordgo.PermissionBanMembers

func userOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: description,
		NameLocalizations: map[discordgo.Locale]string{
			discordgo.Russian: "пользователь",
		},
		Required: true,
	}
}

var BanCommand = &discordgo.ApplicationCommand{
	Name:                     "ban",
	Description:              "Запретить пользователю подавать объявления",
	DefaultMemberPermissions: &adminPermissions,
	Options: []*discordgo.ApplicationCommandOption{
		userOption("Кого заблокировать"),
	},
}

var UnbanCommand = &discordgo.ApplicationCommand{
	Name:                     "unban",
	Description:              "Снять запрет на подачу объявлений",
	DefaultMemberPermissions: &adminPermissions,
	Options: []*discordgo.ApplicationCommandOption{
		userOption("Кого разблокировать"),
	},
}
