package evaluator

import (
	"context"
	"math"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/homescout-ai/homescout/internal/config"
	"github.com/homescout-ai/homescout/internal/model"
)

// Calculator implements the Affordability interface with a full monthly
// cost-of-ownership model. It is pure computation: no I/O, so a call never
// blocks on the context.
type Calculator struct {
	defaults config.AffordabilityConfig
}

// NewCalculator returns an affordability evaluator that fills unset buyer
// profile fields from defaults.
func NewCalculator(defaults config.AffordabilityConfig) *Calculator {
	return &Calculator{defaults: defaults}
}

func (c *Calculator) EvaluateAffordability(_ context.Context, listing model.Listing, user model.UserContext) (model.AffordabilityReport, error) {
	if listing.Price <= 0 {
		return model.AffordabilityReport{}, eris.Errorf("affordability: listing %s has no price", listing.ID)
	}

	fin := c.applyDefaults(user.Financial)
	price := listing.Price

	downPayment := price * fin.DownPaymentPercent / 100
	loanAmount := price - downPayment
	mortgage := monthlyMortgage(loanAmount, fin.InterestRate, fin.LoanTermYears)

	costs := model.MonthlyCosts{
		Mortgage:    round2(mortgage),
		PropertyTax: round2(price * c.defaults.PropertyTaxRate / 100 / 12),
		Insurance:   round2(c.defaults.InsuranceAnnual / 12),
		HOA:         round2(c.defaults.HOAMonthly),
		Utilities:   round2(c.defaults.UtilitiesMonthly),
		Maintenance: round2(price * c.defaults.MaintenancePercent / 100 / 12),
	}
	costs.Total = round2(costs.Mortgage + costs.PropertyTax + costs.Insurance +
		costs.HOA + costs.Utilities + costs.Maintenance)

	monthlyIncome := fin.AnnualIncome / 12
	maxMonthly := monthlyIncome * fin.DTIMaxPercent / 100

	var backEnd float64
	if monthlyIncome > 0 {
		backEnd = (costs.Total + fin.MonthlyDebts) / monthlyIncome
	}

	report := model.AffordabilityReport{
		ListingID:         listing.ID,
		PropertyPrice:     price,
		IsAffordable:      costs.Total+fin.MonthlyDebts <= maxMonthly,
		BackEndRatio:      round4(backEnd),
		MonthlyIncome:     round2(monthlyIncome),
		MaxMonthlyPayment: round2(maxMonthly),
		MonthlySurplus:    round2(maxMonthly - costs.Total - fin.MonthlyDebts),
		Costs:             costs,
		Financing: model.Financing{
			DownPayment:  round2(downPayment),
			LoanAmount:   round2(loanAmount),
			InterestRate: fin.InterestRate,
			TermYears:    fin.LoanTermYears,
		},
		Investment: investmentAnalysis(listing),
	}

	zap.L().Debug("affordability evaluated",
		zap.String("listing_id", listing.ID),
		zap.Bool("affordable", report.IsAffordable),
		zap.Float64("back_end_ratio", report.BackEndRatio),
	)
	return report, nil
}

func (c *Calculator) applyDefaults(fin model.FinancialInfo) model.FinancialInfo {
	if fin.AnnualIncome <= 0 {
		fin.AnnualIncome = c.defaults.AnnualIncome
	}
	if fin.DownPaymentPercent <= 0 {
		fin.DownPaymentPercent = c.defaults.DownPaymentPercent
	}
	if fin.InterestRate <= 0 {
		fin.InterestRate = c.defaults.InterestRate
	}
	if fin.LoanTermYears <= 0 {
		fin.LoanTermYears = c.defaults.LoanTermYears
	}
	if fin.DTIMaxPercent <= 0 {
		fin.DTIMaxPercent = c.defaults.DTIMaxPercent
	}
	return fin
}

// monthlyMortgage computes the standard amortized payment. A zero rate
// degrades to straight-line principal.
func monthlyMortgage(loanAmount, annualRatePercent float64, termYears int) float64 {
	n := float64(termYears * 12)
	if n <= 0 {
		return 0
	}
	r := annualRatePercent / 100 / 12
	if r == 0 {
		return loanAmount / n
	}
	factor := math.Pow(1+r, n)
	return loanAmount * r * factor / (factor - 1)
}

// investmentAnalysis grades value for money from price per square foot and
// property age. Base 50, bounded adjustments, good at 60 or better.
func investmentAnalysis(listing model.Listing) model.Investment {
	inv := model.Investment{Score: 50}

	if listing.SquareFootage > 0 {
		inv.PricePerSqft = round2(listing.Price / listing.SquareFootage)
		switch {
		case inv.PricePerSqft < 150:
			inv.Score += 20
		case inv.PricePerSqft > 300:
			inv.Score -= 20
		}
	}

	if listing.YearBuilt > 0 {
		inv.PropertyAge = time.Now().Year() - listing.YearBuilt
		switch {
		case inv.PropertyAge < 10:
			inv.Score += 15
		case inv.PropertyAge > 50:
			inv.Score -= 15
		}
	}

	if inv.Score > 100 {
		inv.Score = 100
	}
	if inv.Score < 0 {
		inv.Score = 0
	}
	inv.Good = inv.Score >= 60
	return inv
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
