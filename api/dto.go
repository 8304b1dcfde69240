package api

import (
	"time"

	"prizedraw/models"
)

type EnterSessionRequest struct {
	Username string `json:"username"`
}

type PrizeResponse struct {
	ID          string           `json:"id"`
	Label       string           `json:"label"`
	Kind        models.PrizeKind `json:"kind"`
	Value       float64          `json:"value"`
	Weight      float64          `json:"weight"`
	Probability float64          `json:"probability"`
}

type PrizesResponse struct {
	SpinCost int64           `json:"spin_cost"`
	Prizes   []PrizeResponse `json:"prizes"`
}

type DrawResultResponse struct {
	Prize        models.PrizeEntry `json:"prize"`
	Message      string            `json:"message"`
	UsedFreeSpin bool              `json:"used_free_spin"`
	Charge       int64             `json:"charge"`
	Balance      int64             `json:"balance"`
}

type SessionResponse struct {
	UserID             int64               `json:"user_id"`
	Balance            int64               `json:"balance"`
	FreeSpinsRemaining int                 `json:"free_spins_remaining"`
	IsSpinning         bool                `json:"is_spinning"`
	SpinCost           int64               `json:"spin_cost"`
	CanSpin            bool                `json:"can_spin"`
	LastResult         *DrawResultResponse `json:"last_result,omitempty"`
	StartedAt          time.Time           `json:"started_at"`
}

type SpinRecordResponse struct {
	ID            int64            `json:"id"`
	PrizeID       string           `json:"prize_id"`
	PrizeLabel    string           `json:"prize_label"`
	PrizeKind     models.PrizeKind `json:"prize_kind"`
	PrizeValue    float64          `json:"prize_value"`
	UsedFreeSpin  bool             `json:"used_free_spin"`
	Charge        int64            `json:"charge"`
	BonusCredited int64            `json:"bonus_credited"`
	CreatedAt     time.Time        `json:"created_at"`
}

type HistoryResponse struct {
	Spins []SpinRecordResponse `json:"spins"`
	Stats *models.SpinStats    `json:"stats,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func toPrizesResponse(odds []models.PrizeOdds, cost int64) PrizesResponse {
	prizes := make([]PrizeResponse, 0, len(odds))
	for _, o := range odds {
		prizes = append(prizes, PrizeResponse{
			ID:          o.Prize.ID,
			Label:       o.Prize.Label,
			Kind:        o.Prize.Kind,
			Value:       o.Prize.Value,
			Weight:      o.Prize.Weight,
			Probability: o.Probability,
		})
	}
	return PrizesResponse{SpinCost: cost, Prizes: prizes}
}

func toDrawResultResponse(r *models.DrawResult) *DrawResultResponse {
	if r == nil {
		return nil
	}
	return &DrawResultResponse{
		Prize:        r.Prize,
		Message:      r.Message,
		UsedFreeSpin: r.UsedFreeSpin,
		Charge:       r.Charge,
		Balance:      r.NewBalance,
	}
}

func toSessionResponse(v *models.SessionView) SessionResponse {
	return SessionResponse{
		UserID:             v.DiscordID,
		Balance:            v.Balance,
		FreeSpinsRemaining: v.FreeSpinsRemaining,
		IsSpinning:         v.IsSpinning,
		SpinCost:           v.SpinCost,
		CanSpin:            v.CanSpin,
		LastResult:         toDrawResultResponse(v.LastResult),
		StartedAt:          v.StartedAt,
	}
}

func toHistoryResponse(spins []*models.Spin, stats *models.SpinStats) HistoryResponse {
	records := make([]SpinRecordResponse, 0, len(spins))
	for _, s := range spins {
		records = append(records, SpinRecordResponse{
			ID:            s.ID,
			PrizeID:       s.PrizeID,
			PrizeLabel:    s.PrizeLabel,
			PrizeKind:     s.PrizeKind,
			PrizeValue:    s.PrizeValue,
			UsedFreeSpin:  s.UsedFreeSpin,
			Charge:        s.Charge,
			BonusCredited: s.BonusCredited,
			CreatedAt:     s.CreatedAt,
		})
	}
	return HistoryResponse{Spins: records, Stats: stats}
}
