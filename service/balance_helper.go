package service

import (
	"context"
	"fmt"

	"prizedraw/events"
	"prizedraw/models"
)

// RecordBalanceChange records a balance history entry and queues the matching events.
// Every balance change goes through here so history and events stay in step.
func RecordBalanceChange(ctx context.Context, uow UnitOfWork, history *models.BalanceHistory) error {
	if err := uow.BalanceHistoryRepository().Record(ctx, history); err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:          history.DiscordID,
		OldBalance:      history.BalanceBefore,
		NewBalance:      history.BalanceAfter,
		TransactionType: history.TransactionType,
		ChangeAmount:    history.ChangeAmount,
	})

	if history.TransactionType == models.TransactionTypeInitial {
		username, _ := history.TransactionMetadata["username"].(string)
		freeSpins, _ := history.TransactionMetadata["free_spins"].(int)
		uow.EventBus().Publish(events.UserCreatedEvent{
			UserID:           history.DiscordID,
			Username:         username,
			InitialBalance:   history.BalanceAfter,
			InitialFreeSpins: freeSpins,
		})
	}

	return nil
}
