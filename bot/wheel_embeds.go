package bot

import (
	"errors"
	"fmt"
	"strings"

	"prizedraw/bot/common"
	"prizedraw/draw"
	"prizedraw/models"
	"prizedraw/service"

	"github.com/bwmarrin/discordgo"
)

// Color constants for embeds
const (
	ColorPrimary = 0x5865F2 // Discord blurple
	ColorSuccess = 0x57F287 // Green
	ColorDanger  = 0xED4245 // Red
	ColorWarning = 0xFEE75C // Yellow
	ColorJackpot = 0xF1C40F // Gold
)

var kindEmoji = map[models.PrizeKind]string{
	models.PrizeKindJackpot:  "💰",
	models.PrizeKindDiscount: "🏷️",
	models.PrizeKindBonus:    "🪙",
	models.PrizeKindNothing:  "💨",
}

func prizeEmoji(kind models.PrizeKind) string {
	if e, ok := kindEmoji[kind]; ok {
		return e
	}
	return "🎁"
}

// buildSpinningEmbed is shown while the wheel animation plays
func buildSpinningEmbed(displayName string, result *models.DrawResult) *discordgo.MessageEmbed {
	payment := fmt.Sprintf("Paid **%s bits**", common.FormatBalance(result.Charge))
	if result.UsedFreeSpin {
		payment = "Used a **free spin**"
	}

	return &discordgo.MessageEmbed{
		Title:       "🎡 The wheel is spinning...",
		Description: fmt.Sprintf("%s spins the wheel!\n%s", displayName, payment),
		Color:       ColorPrimary,
	}
}

// buildResultEmbed reveals the drawn prize
func buildResultEmbed(displayName string, result *models.DrawResult, freeSpinsLeft int) *discordgo.MessageEmbed {
	color := ColorSuccess
	switch result.Prize.Kind {
	case models.PrizeKindJackpot:
		color = ColorJackpot
	case models.PrizeKindNothing:
		color = ColorWarning
	}

	payment := fmt.Sprintf("%s bits", common.FormatBalance(result.Charge))
	if result.UsedFreeSpin {
		payment = "Free spin"
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s %s", prizeEmoji(result.Prize.Kind), result.Prize.Label),
		Description: fmt.Sprintf("%s\n\n%s", displayName, result.Message),
		Color:       color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Paid with", Value: payment, Inline: true},
			{Name: "Balance", Value: fmt.Sprintf("%s bits", common.FormatBalance(result.NewBalance)), Inline: true},
			{Name: "Free spins", Value: fmt.Sprintf("%d", freeSpinsLeft), Inline: true},
		},
	}
}

// buildWheelEmbed lists every prize with its odds in table order
func buildWheelEmbed(prizes []models.PrizeOdds, cost int64) *discordgo.MessageEmbed {
	var sb strings.Builder
	for _, p := range prizes {
		fmt.Fprintf(&sb, "%s **%s**: %s\n", prizeEmoji(p.Prize.Kind), p.Prize.Label, common.FormatPercent(p.Probability))
	}

	return &discordgo.MessageEmbed{
		Title:       "🎡 Prize Wheel",
		Description: sb.String(),
		Color:       ColorPrimary,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Each spin costs %s bits. Free spins are used first.", common.FormatBalance(cost)),
		},
	}
}

// buildStatusEmbed summarizes a player's session
func buildStatusEmbed(displayName string, view *models.SessionView, stats *models.SpinStats) *discordgo.MessageEmbed {
	status := "✅ Ready to spin"
	if view.IsSpinning {
		status = "🎡 Spinning"
	} else if !view.CanSpin {
		status = "⛔ Not enough bits"
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🎡 %s's Wheel", displayName),
		Color: ColorPrimary,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Balance", Value: fmt.Sprintf("%s bits", common.FormatBalance(view.Balance)), Inline: true},
			{Name: "Free spins", Value: fmt.Sprintf("%d", view.FreeSpinsRemaining), Inline: true},
			{Name: "Spin cost", Value: fmt.Sprintf("%s bits", common.FormatBalance(view.SpinCost)), Inline: true},
			{Name: "Status", Value: status, Inline: false},
		},
	}

	if view.LastResult != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Last result",
			Value: fmt.Sprintf("%s %s", prizeEmoji(view.LastResult.Prize.Kind), view.LastResult.Prize.Label),
		})
	}

	if stats != nil && stats.TotalSpins > 0 {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("%d spins • %d jackpots • %s bits won", stats.TotalSpins, stats.JackpotsWon, common.FormatBalance(stats.TotalBonusWon)),
		}
	}

	return embed
}

// buildJackpotAnnouncement is posted to the announce channel when a prize is awarded
func buildJackpotAnnouncement(prize models.PrizeEntry, userID int64, username string) *discordgo.MessageEmbed {
	title := "🏷️ Discount won!"
	color := ColorSuccess
	if prize.Kind == models.PrizeKindJackpot {
		title = "💰 JACKPOT!"
		color = ColorJackpot
	}

	who := fmt.Sprintf("<@%d>", userID)
	if username != "" {
		who = fmt.Sprintf("%s (<@%d>)", username, userID)
	}

	return &discordgo.MessageEmbed{
		Title:       title,
		Description: fmt.Sprintf("%s just won **%s** on the wheel!", who, prize.Label),
		Color:       color,
	}
}

// spinErrorMessage maps a spin failure to a user-facing message
func spinErrorMessage(err error, cost int64) string {
	switch {
	case errors.Is(err, draw.ErrAlreadySpinning):
		return "The wheel is already spinning. Wait for your result!"
	case errors.Is(err, draw.ErrInsufficientFunds):
		return fmt.Sprintf("You need **%s bits** or a free spin to play.", common.FormatBalance(cost))
	case errors.Is(err, service.ErrNoSession):
		return "Use /spin to step up to the wheel first."
	case errors.Is(err, service.ErrUserNotFound):
		return "You don't have an account yet. Use /spin to get started."
	default:
		return "Something went wrong. Please try again later."
	}
}
