package testutil

import (
	"time"

	"prizedraw/models"
)

// CreateTestUser creates a test user with default values
func CreateTestUser(discordID int64, username string) *models.User {
	now := time.Now()
	return &models.User{
		DiscordID: discordID,
		Username:  username,
		Balance:   1000,
		FreeSpins: 3,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateTestBalanceHistory creates a spin cost history entry
func CreateTestBalanceHistory(discordID int64, before int64, charge int64) *models.BalanceHistory {
	return &models.BalanceHistory{
		DiscordID:       discordID,
		BalanceBefore:   before,
		BalanceAfter:    before - charge,
		ChangeAmount:    -charge,
		TransactionType: models.TransactionTypeSpinCost,
		TransactionMetadata: map[string]any{
			"spin_cost": charge,
		},
	}
}

// CreateTestSpin creates an unsaved spin for the given prize kind
func CreateTestSpin(discordID int64, kind models.PrizeKind, usedFreeSpin bool, charge int64) *models.Spin {
	spin := &models.Spin{
		DiscordID:    discordID,
		PrizeID:      string(kind),
		PrizeLabel:   "Test " + string(kind),
		PrizeKind:    kind,
		UsedFreeSpin: usedFreeSpin,
		Charge:       charge,
	}
	if kind == models.PrizeKindBonus {
		spin.PrizeValue = 50
		spin.BonusCredited = 50
	}
	return spin
}
