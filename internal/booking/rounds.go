package booking

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ValidateRounds enforces the structured tee-time contract:
// - Every entry must carry a time (the resolver reads the first entry's time).
// - Player counts and per-player costs must not be negative.
func ValidateRounds(rounds []Round) error {
	for _, r := range rounds {
		if r.Time == "" {
			return ValidationError{Code: "ROUND_TIME_MISSING", Message: "round entry requires a time"}
		}
		if r.Players < 0 {
			return ValidationError{Code: "ROUND_PLAYERS_INVALID", Message: "round players must be >= 0"}
		}
		if r.CostPerPlayer.IsNegative() {
			return ValidationError{Code: "ROUND_COST_INVALID", Message: "round cost must be >= 0"}
		}
	}
	return nil
}

// RoundsTotal computes the booking total implied by its structured rounds.
// Used to default the total when intake omits it.
func RoundsTotal(rounds []Round) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range rounds {
		players := decimal.NewFromInt(int64(NormalizePlayers(r.Players)))
		sum = sum.Add(r.CostPerPlayer.Mul(players))
	}
	return sum
}
