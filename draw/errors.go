package draw

import "errors"

var (
	// ErrAlreadySpinning is returned when a spin is requested while another is outstanding
	ErrAlreadySpinning = errors.New("spin already in progress")

	// ErrInsufficientFunds is returned when the session has no free spins and the balance is below the cost
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidTable is returned by NewTable for empty, all-zero or otherwise malformed tables
	ErrInvalidTable = errors.New("invalid prize table")

	// ErrInvalidCost is returned when the spin cost is negative
	ErrInvalidCost = errors.New("spin cost must not be negative")
)
