package repository

import (
	"context"
	"fmt"

	"prizedraw/database"
	"prizedraw/models"
)

// SpinRepository implements the SpinRepository interface
type SpinRepository struct {
	q queryable
}

// NewSpinRepository creates a new spin repository
func NewSpinRepository(db *database.DB) *SpinRepository {
	return &SpinRepository{q: db.Pool}
}

func newSpinRepositoryWithTx(tx queryable) *SpinRepository {
	return &SpinRepository{q: tx}
}

// Create persists a spin and sets its ID and CreatedAt
func (r *SpinRepository) Create(ctx context.Context, spin *models.Spin) error {
	query := `
		INSERT INTO spins
		(discord_id, prize_id, prize_label, prize_kind, prize_value, used_free_spin, charge, bonus_credited, balance_history_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		spin.DiscordID,
		spin.PrizeID,
		spin.PrizeLabel,
		spin.PrizeKind,
		spin.PrizeValue,
		spin.UsedFreeSpin,
		spin.Charge,
		spin.BonusCredited,
		spin.BalanceHistoryID,
	).Scan(&spin.ID, &spin.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create spin for user %d: %w", spin.DiscordID, err)
	}

	return nil
}

// GetByUser returns a user's spins, newest first
func (r *SpinRepository) GetByUser(ctx context.Context, discordID int64, limit int) ([]*models.Spin, error) {
	query := `
		SELECT id, discord_id, prize_id, prize_label, prize_kind, prize_value,
		       used_free_spin, charge, bonus_credited, balance_history_id, created_at
		FROM spins
		WHERE discord_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, discordID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query spins: %w", err)
	}
	defer rows.Close()

	var spins []*models.Spin
	for rows.Next() {
		var s models.Spin
		if err := rows.Scan(
			&s.ID,
			&s.DiscordID,
			&s.PrizeID,
			&s.PrizeLabel,
			&s.PrizeKind,
			&s.PrizeValue,
			&s.UsedFreeSpin,
			&s.Charge,
			&s.BonusCredited,
			&s.BalanceHistoryID,
			&s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan spin: %w", err)
		}
		spins = append(spins, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate spins: %w", err)
	}

	return spins, nil
}

// GetStats aggregates a user's spins
func (r *SpinRepository) GetStats(ctx context.Context, discordID int64) (*models.SpinStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE used_free_spin),
			COALESCE(SUM(charge), 0)::BIGINT,
			COALESCE(SUM(bonus_credited), 0)::BIGINT,
			COUNT(*) FILTER (WHERE prize_kind = 'jackpot'),
			COUNT(*) FILTER (WHERE prize_kind = 'discount'),
			COUNT(*) FILTER (WHERE prize_kind = 'nothing')
		FROM spins
		WHERE discord_id = $1
	`

	var stats models.SpinStats
	err := r.q.QueryRow(ctx, query, discordID).Scan(
		&stats.TotalSpins,
		&stats.FreeSpinsUsed,
		&stats.TotalCharged,
		&stats.TotalBonusWon,
		&stats.JackpotsWon,
		&stats.DiscountsWon,
		&stats.NothingResults,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get spin stats for user %d: %w", discordID, err)
	}

	return &stats, nil
}
