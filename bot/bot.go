package bot

import (
	"context"
	"fmt"
	"time"

	"prizedraw/bot/common"
	"prizedraw/events"
	"prizedraw/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token             string
	GuildID           string
	AnnounceChannelID string
	AdminIDs          []int64
	RevealDelay       time.Duration
}

type Bot struct {
	config      Config
	session     *discordgo.Session
	userService service.UserService
	spinService service.SpinService
	eventBus    *events.Bus
	reveals     *revealGuard
	stop        chan struct{}
}

func New(config Config, userService service.UserService, spinService service.SpinService, eventBus *events.Bus) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

	bot := &Bot{
		config:      config,
		session:     dg,
		userService: userService,
		spinService: spinService,
		eventBus:    eventBus,
		reveals:     newRevealGuard(),
		stop:        make(chan struct{}),
	}

	dg.AddHandler(bot.handleCommands)

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	go bot.startSessionCleanup()

	if config.AnnounceChannelID != "" {
		eventBus.Subscribe(events.EventTypePrizeAwarded, bot.announcePrize)
		log.WithField("channelID", config.AnnounceChannelID).Info("Prize announcements enabled")
	}

	return bot, nil
}

func (b *Bot) Close() error {
	close(b.stop)
	return b.session.Close()
}

// startSessionCleanup periodically drops idle wheel sessions
func (b *Bot) startSessionCleanup() {
	ticker := time.NewTicker(30 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.spinService.CleanupInactiveSessions()
		case <-b.stop:
			return
		}
	}
}

func (b *Bot) announcePrize(ctx context.Context, event events.Event) {
	awarded, ok := event.(events.PrizeAwardedEvent)
	if !ok {
		return
	}

	embed := buildJackpotAnnouncement(awarded.Prize, awarded.UserID, awarded.Username)
	if _, err := b.session.ChannelMessageSendEmbed(b.config.AnnounceChannelID, embed); err != nil {
		log.WithFields(log.Fields{
			"userID":  awarded.UserID,
			"spinID":  awarded.SpinID,
			"prizeID": awarded.Prize.ID,
		}).Errorf("Failed to announce prize: %v", err)
	}
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "spin":
		b.handleSpin(s, i)
	case "wheel":
		b.handleWheel(s, i)
	case "spinstatus":
		b.handleSpinStatus(s, i)
	case "grantspins":
		b.handleGrantSpins(s, i)
	}
}

func (b *Bot) isAdmin(discordID int64) bool {
	for _, id := range b.config.AdminIDs {
		if id == discordID {
			return true
		}
	}
	return false
}

func (b *Bot) respondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	common.RespondWithError(s, i, message)
}
