package usecases

import (
	"time"

	"github.com/shopspring/decimal"
	"peerlend.backend/internal/domain/entities"
)

// Interest rates by risk tier, in percent. HIGH risk pays the most.
var tierInterestRates = map[entities.RiskTier]decimal.Decimal{
	entities.RiskTierHigh:   decimal.RequireFromString("15.0"),
	entities.RiskTierMedium: decimal.RequireFromString("10.0"),
	entities.RiskTierLow:    decimal.RequireFromString("5.0"),
}

var (
	incomeBandLow  = decimal.NewFromInt(2000)
	incomeBandHigh = decimal.NewFromInt(5000)
)

// RiskScorer computes a risk tier and numeric score from profile attributes.
// Higher score means LOWER risk; the tier names preserve that inversion
// because the interest-rate table depends on it.
type RiskScorer struct{}

func NewRiskScorer() *RiskScorer {
	return &RiskScorer{}
}

// Score is a pure function over age, monthly income and account tenure.
func (s *RiskScorer) Score(identity *entities.Identity, now time.Time) (entities.RiskTier, int) {
	score := 0

	if identity.DateOfBirth.Valid {
		age := calendarAge(identity.DateOfBirth.Time, now)
		switch {
		case age >= 18 && age < 25:
			score += 10
		case age >= 25 && age < 45:
			score += 30
		case age >= 45:
			score += 25
		}
	}

	income := identity.MonthlyIncome
	switch {
	case income.LessThanOrEqual(incomeBandLow):
		score += 5
	case income.LessThanOrEqual(incomeBandHigh):
		score += 20
	default:
		score += 40
	}

	if now.Sub(identity.CreatedAt) > 365*24*time.Hour {
		score += 15
	}

	switch {
	case score <= 30:
		return entities.RiskTierHigh, score
	case score <= 60:
		return entities.RiskTierMedium, score
	default:
		return entities.RiskTierLow, score
	}
}

// InterestRateFor returns the percent interest rate applied to loans of a tier
func InterestRateFor(tier entities.RiskTier) decimal.Decimal {
	if rate, ok := tierInterestRates[tier]; ok {
		return rate
	}
	return tierInterestRates[entities.RiskTierHigh]
}

// calendarAge computes full years between dob and now, subtracting one when
// the birthday has not yet occurred this year.
func calendarAge(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}
