package models

import "time"

// PrizeKind categorizes what a prize entry awards
type PrizeKind string

const (
	PrizeKindJackpot  PrizeKind = "jackpot"
	PrizeKindDiscount PrizeKind = "discount"
	PrizeKindBonus    PrizeKind = "bonus"
	PrizeKindNothing  PrizeKind = "nothing"
)

// Valid reports whether k is one of the known prize kinds
func (k PrizeKind) Valid() bool {
	switch k {
	case PrizeKindJackpot, PrizeKindDiscount, PrizeKindBonus, PrizeKindNothing:
		return true
	}
	return false
}

// PrizeEntry is a single slice of the wheel.
// Weight is relative; the table is normalized by the sum of all weights.
type PrizeEntry struct {
	ID     string    `yaml:"id" json:"id"`
	Label  string    `yaml:"label" json:"label"`
	Kind   PrizeKind `yaml:"kind" json:"kind"`
	Value  float64   `yaml:"value" json:"value"`
	Weight float64   `yaml:"weight" json:"weight"`
}

// SpinSession holds the transient per-user state of the wheel
type SpinSession struct {
	DiscordID          int64
	IsSpinning         bool
	FreeSpinsRemaining int
	LastResult         *DrawResult
	StartedAt          time.Time
	LastActivity       time.Time
}

// DrawResult is the outcome of one spin (returned to the user)
type DrawResult struct {
	Prize   PrizeEntry
	Message string

	// UsedFreeSpin is set when the spin consumed a free spin instead of balance
	UsedFreeSpin bool

	// ChargeRequired signals the caller must deduct Charge from the user's balance
	ChargeRequired bool
	Charge         int64

	// Populated by the service layer after the charge and any bonus are applied
	NewBalance int64
}

// PrizeOdds pairs a prize entry with its normalized probability
type PrizeOdds struct {
	Prize       PrizeEntry
	Probability float64
}
