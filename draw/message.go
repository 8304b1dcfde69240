package draw

import (
	"fmt"
	"strconv"

	"prizedraw/models"
)

// FormatMessage renders the user-facing result message for a prize
func FormatMessage(prize models.PrizeEntry) string {
	switch prize.Kind {
	case models.PrizeKindJackpot:
		return fmt.Sprintf("JACKPOT! You won %s!", prize.Label)
	case models.PrizeKindDiscount:
		return fmt.Sprintf("You won %s: %s%% off your next order.", prize.Label, formatValue(prize.Value))
	case models.PrizeKindBonus:
		return fmt.Sprintf("You won %s: %s bits added to your balance.", prize.Label, formatValue(prize.Value))
	default:
		return fmt.Sprintf("%s. Better luck next spin!", prize.Label)
	}
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
