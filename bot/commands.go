package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

var minGrantCount = float64(1)

func commandDefinitions() []*discordgo.ApplicationCommand {
	adminOnly := int64(discordgo.PermissionManageServer)

	return []*discordgo.ApplicationCommand{
		{
			Name:        "spin",
			Description: "Spin the prize wheel",
		},
		{
			Name:        "wheel",
			Description: "Show the prizes on the wheel and their odds",
		},
		{
			Name:        "spinstatus",
			Description: "Show your balance, free spins and last result",
		},
		{
			Name:                     "grantspins",
			Description:              "Grant free spins to a player",
			DefaultMemberPermissions: &adminOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Player to receive the spins",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "count",
					Description: "Number of free spins",
					Required:    true,
					MinValue:    &minGrantCount,
					MaxValue:    100,
				},
			},
		},
	}
}

func (b *Bot) registerCommands() error {
	commands := commandDefinitions()

	for _, cmd := range commands {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
		log.WithField("command", cmd.Name).Debug("Registered slash command")
	}

	log.Infof("Registered %d slash commands", len(commands))
	return nil
}
