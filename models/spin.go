package models

import "time"

// Spin represents a persisted spin of the prize wheel
type Spin struct {
	ID               int64     `db:"id"`
	DiscordID        int64     `db:"discord_id"`
	PrizeID          string    `db:"prize_id"`
	PrizeLabel       string    `db:"prize_label"`
	PrizeKind        PrizeKind `db:"prize_kind"`
	PrizeValue       float64   `db:"prize_value"`
	UsedFreeSpin     bool      `db:"used_free_spin"`
	Charge           int64     `db:"charge"`
	BonusCredited    int64     `db:"bonus_credited"`
	BalanceHistoryID *int64    `db:"balance_history_id"`
	CreatedAt        time.Time `db:"created_at"`
}

// SpinStats aggregates a user's spin history
type SpinStats struct {
	TotalSpins     int
	FreeSpinsUsed  int
	TotalCharged   int64
	TotalBonusWon  int64
	JackpotsWon    int
	DiscountsWon   int
	NothingResults int
}

// SessionView is a read-only snapshot of a player's session and account
type SessionView struct {
	DiscordID          int64
	Balance            int64
	FreeSpinsRemaining int
	IsSpinning         bool
	SpinCost           int64
	CanSpin            bool
	LastResult         *DrawResult
	StartedAt          time.Time
}
