package events

import (
	"prizedraw/models"
)

// EventType identifies an event kind on the bus
type EventType string

const (
	EventTypeBalanceChange EventType = "balance_change"
	EventTypeUserCreated   EventType = "user_created"
	EventTypeSpinCompleted EventType = "spin_completed"
	EventTypePrizeAwarded  EventType = "prize_awarded"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent is emitted for every recorded balance change
type BalanceChangeEvent struct {
	UserID          int64
	OldBalance      int64
	NewBalance      int64
	TransactionType models.TransactionType
	ChangeAmount    int64
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// UserCreatedEvent is emitted when a player is seen for the first time
type UserCreatedEvent struct {
	UserID           int64
	Username         string
	InitialBalance   int64
	InitialFreeSpins int
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
}

// SpinCompletedEvent is emitted after a spin is committed
type SpinCompletedEvent struct {
	UserID       int64
	SpinID       int64
	PrizeID      string
	PrizeKind    models.PrizeKind
	UsedFreeSpin bool
	Charge       int64
}

func (e SpinCompletedEvent) Type() EventType {
	return EventTypeSpinCompleted
}

// PrizeAwardedEvent is emitted for prizes fulfilled outside the balance
// (jackpots and discounts), e.g. to announce them or hand them to order handling
type PrizeAwardedEvent struct {
	UserID   int64
	Username string
	SpinID   int64
	Prize    models.PrizeEntry
}

func (e PrizeAwardedEvent) Type() EventType {
	return EventTypePrizeAwarded
}
