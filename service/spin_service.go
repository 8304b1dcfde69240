package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"prizedraw/config"
	"prizedraw/draw"
	"prizedraw/events"
	"prizedraw/metrics"
	"prizedraw/models"

	log "github.com/sirupsen/logrus"
)

type spinService struct {
	uowFactory  UnitOfWorkFactory
	userService UserService
	engine      *draw.Engine
	sessions    *sessionStore
	cost        int64
	sessionTTL  time.Duration
}

// NewSpinService creates a new spin service
func NewSpinService(uowFactory UnitOfWorkFactory, userService UserService, engine *draw.Engine, cfg *config.Config) SpinService {
	return &spinService{
		uowFactory:  uowFactory,
		userService: userService,
		engine:      engine,
		sessions:    newSessionStore(),
		cost:        cfg.SpinCost,
		sessionTTL:  cfg.SessionTTL,
	}
}

func (s *spinService) EnterSession(ctx context.Context, discordID int64, username string) (*models.SessionView, error) {
	user, err := s.userService.GetOrCreateUser(ctx, discordID, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create user: %w", err)
	}

	entry, created := s.sessions.getOrCreate(discordID, user.FreeSpins)
	if created {
		metrics.SetActiveSessions(s.sessions.count())
		log.WithFields(log.Fields{
			"discordID": discordID,
			"freeSpins": user.FreeSpins,
		}).Debug("Spin session started")
	}

	return s.view(entry.snapshot(), user.Balance), nil
}

func (s *spinService) GetSession(ctx context.Context, discordID int64) (*models.SessionView, error) {
	entry := s.sessions.get(discordID)
	if entry == nil {
		return nil, ErrNoSession
	}

	user, err := s.userService.GetUser(ctx, discordID)
	if err != nil {
		return nil, err
	}

	session := entry.snapshot()
	session.FreeSpinsRemaining = user.FreeSpins
	return s.view(session, user.Balance), nil
}

func (s *spinService) LeaveSession(discordID int64) bool {
	removed := s.sessions.delete(discordID)
	if removed {
		metrics.SetActiveSessions(s.sessions.count())
	}
	return removed
}

func (s *spinService) CanSpin(ctx context.Context, discordID int64) (bool, error) {
	view, err := s.GetSession(ctx, discordID)
	if err != nil {
		return false, err
	}
	return view.CanSpin, nil
}

// Spin runs one spin for the player. The session store's in-flight flag
// rejects overlapping spins; the engine decides the prize and whether to
// charge, and the unit of work applies that decision. The stored session is
// only replaced once the transaction commits.
func (s *spinService) Spin(ctx context.Context, discordID int64) (*models.DrawResult, error) {
	entry := s.sessions.get(discordID)
	if entry == nil {
		metrics.RecordRejection(metrics.ReasonNoSession)
		return nil, ErrNoSession
	}

	if !entry.tryAcquire() {
		metrics.RecordRejection(metrics.ReasonAlreadySpinning)
		return nil, draw.ErrAlreadySpinning
	}
	defer entry.release()

	working := entry.snapshot()
	working.IsSpinning = false

	result, err := s.spin(ctx, discordID, &working)
	if err != nil {
		switch {
		case errors.Is(err, draw.ErrInsufficientFunds):
			metrics.RecordRejection(metrics.ReasonInsufficientFunds)
		case errors.Is(err, draw.ErrAlreadySpinning):
			metrics.RecordRejection(metrics.ReasonAlreadySpinning)
		default:
			metrics.RecordRejection(metrics.ReasonError)
			log.WithFields(log.Fields{
				"discordID": discordID,
				"error":     err,
			}).Error("Spin failed")
		}
		return nil, err
	}

	entry.commit(working, s.sessions.now())
	metrics.RecordSpin(string(result.Prize.Kind), result.UsedFreeSpin, result.Charge)

	log.WithFields(log.Fields{
		"discordID":    discordID,
		"prizeID":      result.Prize.ID,
		"prizeKind":    result.Prize.Kind,
		"usedFreeSpin": result.UsedFreeSpin,
		"charge":       result.Charge,
		"newBalance":   result.NewBalance,
	}).Info("Spin completed")

	return result, nil
}

// spin performs the spin against a working copy of the session inside one transaction
func (s *spinService) spin(ctx context.Context, discordID int64, session *models.SpinSession) (*models.DrawResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	user, err := uow.UserRepository().GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	// The account is the source of truth for free spins
	session.FreeSpinsRemaining = user.FreeSpins

	result, err := s.engine.Spin(session, user.Balance, s.cost)
	if err != nil {
		return nil, err
	}

	balance := user.Balance
	var costHistoryID *int64

	switch {
	case result.UsedFreeSpin:
		if err := uow.UserRepository().ConsumeFreeSpin(ctx, discordID); err != nil {
			// Another spin on the same account took the free spin first
			if errors.Is(err, ErrNoFreeSpins) {
				return nil, fmt.Errorf("%w: %v", draw.ErrAlreadySpinning, err)
			}
			return nil, fmt.Errorf("failed to consume free spin: %w", err)
		}
	case result.ChargeRequired:
		if err := uow.UserRepository().DeductBalance(ctx, discordID, result.Charge); err != nil {
			if errors.Is(err, ErrInsufficientBalance) {
				return nil, fmt.Errorf("%w: %v", draw.ErrInsufficientFunds, err)
			}
			return nil, fmt.Errorf("failed to deduct spin cost: %w", err)
		}

		history := &models.BalanceHistory{
			DiscordID:       discordID,
			BalanceBefore:   balance,
			BalanceAfter:    balance - result.Charge,
			ChangeAmount:    -result.Charge,
			TransactionType: models.TransactionTypeSpinCost,
			TransactionMetadata: map[string]any{
				"spin_cost": result.Charge,
				"prize_id":  result.Prize.ID,
			},
		}
		if err := RecordBalanceChange(ctx, uow, history); err != nil {
			return nil, fmt.Errorf("failed to record spin cost: %w", err)
		}
		balance -= result.Charge
		costHistoryID = &history.ID
	}

	bonus := bonusAmount(result.Prize)
	if bonus > 0 {
		if err := uow.UserRepository().AddBalance(ctx, discordID, bonus); err != nil {
			return nil, fmt.Errorf("failed to credit bonus: %w", err)
		}

		history := &models.BalanceHistory{
			DiscordID:       discordID,
			BalanceBefore:   balance,
			BalanceAfter:    balance + bonus,
			ChangeAmount:    bonus,
			TransactionType: models.TransactionTypeSpinBonus,
			TransactionMetadata: map[string]any{
				"prize_id":    result.Prize.ID,
				"prize_label": result.Prize.Label,
			},
		}
		if err := RecordBalanceChange(ctx, uow, history); err != nil {
			return nil, fmt.Errorf("failed to record bonus: %w", err)
		}
		balance += bonus
	}

	spin := &models.Spin{
		DiscordID:        discordID,
		PrizeID:          result.Prize.ID,
		PrizeLabel:       result.Prize.Label,
		PrizeKind:        result.Prize.Kind,
		PrizeValue:       result.Prize.Value,
		UsedFreeSpin:     result.UsedFreeSpin,
		Charge:           result.Charge,
		BonusCredited:    bonus,
		BalanceHistoryID: costHistoryID,
	}
	if err := uow.SpinRepository().Create(ctx, spin); err != nil {
		return nil, fmt.Errorf("failed to create spin record: %w", err)
	}

	uow.EventBus().Publish(events.SpinCompletedEvent{
		UserID:       discordID,
		SpinID:       spin.ID,
		PrizeID:      result.Prize.ID,
		PrizeKind:    result.Prize.Kind,
		UsedFreeSpin: result.UsedFreeSpin,
		Charge:       result.Charge,
	})
	if result.Prize.Kind == models.PrizeKindJackpot || result.Prize.Kind == models.PrizeKindDiscount {
		uow.EventBus().Publish(events.PrizeAwardedEvent{
			UserID:   discordID,
			Username: user.Username,
			SpinID:   spin.ID,
			Prize:    result.Prize,
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	result.NewBalance = balance
	return result, nil
}

func (s *spinService) GrantFreeSpins(ctx context.Context, discordID int64, count int) (int, error) {
	if count <= 0 {
		return 0, fmt.Errorf("free spin count must be positive")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	total, err := uow.UserRepository().AddFreeSpins(ctx, discordID, count)
	if err != nil {
		return 0, fmt.Errorf("failed to grant free spins: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if entry := s.sessions.get(discordID); entry != nil {
		entry.setFreeSpins(total, s.sessions.now())
	}

	log.WithFields(log.Fields{
		"discordID": discordID,
		"granted":   count,
		"total":     total,
	}).Info("Granted free spins")

	return total, nil
}

func (s *spinService) GetHistory(ctx context.Context, discordID int64, limit int) ([]*models.Spin, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	spins, err := uow.SpinRepository().GetByUser(ctx, discordID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to get spin history: %w", err)
	}
	return spins, nil
}

func (s *spinService) GetStats(ctx context.Context, discordID int64) (*models.SpinStats, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	stats, err := uow.SpinRepository().GetStats(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get spin stats: %w", err)
	}
	return stats, nil
}

func (s *spinService) Prizes() []models.PrizeOdds {
	table := s.engine.Table()
	entries := table.Entries()
	odds := make([]models.PrizeOdds, 0, len(entries))
	for _, e := range entries {
		odds = append(odds, models.PrizeOdds{
			Prize:       e,
			Probability: e.Weight / table.Total(),
		})
	}
	return odds
}

func (s *spinService) Cost() int64 {
	return s.cost
}

func (s *spinService) CleanupInactiveSessions() int {
	removed := s.sessions.cleanupInactive(s.sessionTTL)
	metrics.SetActiveSessions(s.sessions.count())
	if removed > 0 {
		log.WithField("removed", removed).Info("Cleaned up inactive spin sessions")
	}
	return removed
}

func (s *spinService) view(session models.SpinSession, balance int64) *models.SessionView {
	return &models.SessionView{
		DiscordID:          session.DiscordID,
		Balance:            balance,
		FreeSpinsRemaining: session.FreeSpinsRemaining,
		IsSpinning:         session.IsSpinning,
		SpinCost:           s.cost,
		CanSpin:            draw.CanSpin(&session, balance, s.cost),
		LastResult:         session.LastResult,
		StartedAt:          session.StartedAt,
	}
}

// bonusAmount is the balance credited by a bonus prize
func bonusAmount(prize models.PrizeEntry) int64 {
	if prize.Kind != models.PrizeKindBonus || prize.Value <= 0 {
		return 0
	}
	return int64(math.Round(prize.Value))
}
