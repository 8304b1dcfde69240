package bot

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"prizedraw/bot/common"
	"prizedraw/draw"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// spinReply is the interaction surface a spin writes to
type spinReply interface {
	Defer() error
	Fail(message string)
	Show(embed *discordgo.MessageEmbed) error
}

// interactionReply answers a slash command interaction, switching from an
// initial response to follow-ups once deferred
type interactionReply struct {
	s        *discordgo.Session
	i        *discordgo.InteractionCreate
	deferred bool
}

func (r *interactionReply) Defer() error {
	if err := common.DeferResponse(r.s, r.i, false); err != nil {
		return err
	}
	r.deferred = true
	return nil
}

func (r *interactionReply) Fail(message string) {
	if r.deferred {
		common.FollowUpWithError(r.s, r.i, message)
		return
	}
	common.RespondWithError(r.s, r.i, message)
}

func (r *interactionReply) Show(embed *discordgo.MessageEmbed) error {
	return common.UpdateMessage(r.s, r.i, embed)
}

func (b *Bot) handleSpin(s *discordgo.Session, i *discordgo.InteractionCreate) {
	discordID, user, err := interactionUserID(i)
	if err != nil {
		log.Errorf("Error parsing Discord ID: %v", err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	displayName := func() string { return GetDisplayName(s, i.GuildID, user.ID) }
	b.runSpin(context.Background(), discordID, user.Username, displayName, &interactionReply{s: s, i: i})
}

// runSpin spins the wheel for one player and plays the reveal. The player's
// reveal guard is held until the result is shown, so another /spin from the
// same player is turned away while the wheel is still turning.
func (b *Bot) runSpin(ctx context.Context, discordID int64, username string, displayName func() string, reply spinReply) {
	if !b.reveals.tryAcquire(discordID) {
		reply.Fail(spinErrorMessage(draw.ErrAlreadySpinning, b.spinService.Cost()))
		return
	}
	defer b.reveals.release(discordID)

	if err := reply.Defer(); err != nil {
		log.Errorf("Error deferring spin response: %v", err)
		return
	}

	if _, err := b.spinService.EnterSession(ctx, discordID, username); err != nil {
		log.WithField("discordID", discordID).Errorf("Error entering spin session: %v", err)
		reply.Fail(spinErrorMessage(err, b.spinService.Cost()))
		return
	}

	result, err := b.spinService.Spin(ctx, discordID)
	if err != nil {
		log.WithField("discordID", discordID).Debugf("Spin rejected: %v", err)
		reply.Fail(spinErrorMessage(err, b.spinService.Cost()))
		return
	}

	name := displayName()

	if err := reply.Show(buildSpinningEmbed(name, result)); err != nil {
		log.Errorf("Error showing spinning wheel: %v", err)
	}

	// The result is already committed; the delay only paces the reveal
	time.Sleep(b.config.RevealDelay)

	freeSpins := 0
	if view, err := b.spinService.GetSession(ctx, discordID); err == nil {
		freeSpins = view.FreeSpinsRemaining
	}

	if err := reply.Show(buildResultEmbed(name, result, freeSpins)); err != nil {
		log.WithFields(log.Fields{
			"discordID": discordID,
			"prizeID":   result.Prize.ID,
		}).Errorf("Error revealing spin result: %v", err)
	}
}

func (b *Bot) handleWheel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	embed := buildWheelEmbed(b.spinService.Prizes(), b.spinService.Cost())
	if err := common.RespondWithEmbed(s, i, embed, false); err != nil {
		log.Errorf("Error sending wheel embed: %v", err)
	}
}

func (b *Bot) handleSpinStatus(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	discordID, user, err := interactionUserID(i)
	if err != nil {
		log.Errorf("Error parsing Discord ID: %v", err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	if err := common.DeferResponse(s, i, true); err != nil {
		log.Errorf("Error deferring status response: %v", err)
		return
	}

	view, err := b.spinService.EnterSession(ctx, discordID, user.Username)
	if err != nil {
		log.WithField("discordID", discordID).Errorf("Error loading spin session: %v", err)
		common.FollowUpWithError(s, i, "Unable to load your wheel. Please try again.")
		return
	}

	stats, err := b.spinService.GetStats(ctx, discordID)
	if err != nil {
		// Show the session without stats
		log.WithField("discordID", discordID).Warnf("Error loading spin stats: %v", err)
		stats = nil
	}

	displayName := GetDisplayName(s, i.GuildID, user.ID)
	if err := common.UpdateMessage(s, i, buildStatusEmbed(displayName, view, stats)); err != nil {
		log.Errorf("Error sending status embed: %v", err)
	}
}

func (b *Bot) handleGrantSpins(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	adminID, _, err := interactionUserID(i)
	if err != nil {
		log.Errorf("Error parsing Discord ID: %v", err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	if !b.isAdmin(adminID) {
		b.respondWithError(s, i, "You are not allowed to grant free spins.")
		return
	}

	options := i.ApplicationCommandData().Options
	var target *discordgo.User
	var count int64
	for _, opt := range options {
		switch opt.Name {
		case "user":
			target = opt.UserValue(s)
		case "count":
			count = opt.IntValue()
		}
	}

	if target == nil || count <= 0 {
		b.respondWithError(s, i, "Pick a player and a positive number of spins.")
		return
	}

	targetID, err := strconv.ParseInt(target.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing target Discord ID %s: %v", target.ID, err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	if err := common.DeferResponse(s, i, true); err != nil {
		log.Errorf("Error deferring grant response: %v", err)
		return
	}

	if _, err := b.userService.GetOrCreateUser(ctx, targetID, target.Username); err != nil {
		log.WithField("discordID", targetID).Errorf("Error loading grant target: %v", err)
		common.FollowUpWithError(s, i, "Unable to grant free spins. Please try again.")
		return
	}

	total, err := b.spinService.GrantFreeSpins(ctx, targetID, int(count))
	if err != nil {
		log.WithFields(log.Fields{
			"adminID":  adminID,
			"targetID": targetID,
			"count":    count,
		}).Errorf("Error granting free spins: %v", err)
		common.FollowUpWithError(s, i, "Unable to grant free spins. Please try again.")
		return
	}

	log.WithFields(log.Fields{
		"adminID":  adminID,
		"targetID": targetID,
		"count":    count,
		"total":    total,
	}).Info("Admin granted free spins")

	common.FollowUpWithSuccess(s, i, fmt.Sprintf("Granted %s to <@%s>. They now have %s.",
		common.FormatSpinCount(int(count)), target.ID, common.FormatSpinCount(total)), true)
}
