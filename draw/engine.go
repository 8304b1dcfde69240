package draw

import (
	"fmt"

	"prizedraw/models"
)

// Engine couples a prize table with a random source.
// It makes the probability decision only; charging, persistence and
// presentation belong to its callers.
type Engine struct {
	table *Table
	rand  RandomSource
}

// NewEngine creates an engine. A nil rnd defaults to CryptoSource.
func NewEngine(table *Table, rnd RandomSource) *Engine {
	if rnd == nil {
		rnd = CryptoSource()
	}
	return &Engine{table: table, rand: rnd}
}

// Table returns the engine's prize table
func (e *Engine) Table() *Table {
	return e.table
}

// Draw performs a single weighted draw without touching any session
func (e *Engine) Draw() models.PrizeEntry {
	return e.table.Draw(e.rand)
}

// CanSpin reports whether a spin may start: the session is idle and it
// either has a free spin left or the balance covers the cost.
func CanSpin(session *models.SpinSession, balance, cost int64) bool {
	if session == nil || session.IsSpinning {
		return false
	}
	return session.FreeSpinsRemaining > 0 || balance >= cost
}

// Spin runs one spin against session.
//
// A free spin is consumed when available; otherwise the result carries
// ChargeRequired and the cost the caller must deduct. The session passes
// idle -> spinning -> idle within this call. On error the session is left
// exactly as it was.
func (e *Engine) Spin(session *models.SpinSession, balance, cost int64) (*models.DrawResult, error) {
	if cost < 0 {
		return nil, ErrInvalidCost
	}
	if session == nil {
		return nil, fmt.Errorf("spin session is nil")
	}
	if session.IsSpinning {
		return nil, ErrAlreadySpinning
	}
	if !CanSpin(session, balance, cost) {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, balance, cost)
	}

	session.IsSpinning = true

	result := &models.DrawResult{}
	if session.FreeSpinsRemaining > 0 {
		session.FreeSpinsRemaining--
		result.UsedFreeSpin = true
	} else {
		result.ChargeRequired = cost > 0
		result.Charge = cost
	}

	prize := e.table.Draw(e.rand)
	result.Prize = prize
	result.Message = FormatMessage(prize)

	session.LastResult = result
	session.IsSpinning = false

	return result, nil
}
