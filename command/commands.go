package command

import (
	"github.com/bwmarrin/discordgo"

	"github.com/theConCreator/OnyxShopbot/command/def"
)

// AllCommands contains all of the commands
var AllCommands = []*discordgo.ApplicationCommand{
	def.BanCommand,
	def.UnbanCommand,
	def.CooldownCommand,
}
