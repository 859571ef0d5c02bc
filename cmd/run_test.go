package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryInputFromRunFlags(t *testing.T) {
	saved := runFlags
	t.Cleanup(func() { runFlags = saved })

	runFlags.priceMin = 200000
	runFlags.priceMax = 450000
	runFlags.bedroomsMin = 3
	runFlags.bathroomsMin = 2
	runFlags.propertyType = "single_family"
	runFlags.keywords = []string{"pool", "garage"}
	runFlags.priorities = []string{"good schools"}
	runFlags.income = 120000
	runFlags.downPayment = 15
	runFlags.interestRate = 6.1
	runFlags.loanTerm = 15
	runFlags.monthlyDebts = 400

	input := queryInputFromRunFlags()

	assert.Equal(t, 200000.0, input.Criteria.PriceMin)
	assert.Equal(t, 450000.0, input.Criteria.PriceMax)
	assert.Equal(t, 3.0, input.Criteria.BedroomsMin)
	assert.Equal(t, "single_family", input.Criteria.PropertyType)
	assert.Equal(t, []string{"pool", "garage"}, input.Criteria.Keywords)
	assert.Equal(t, []string{"good schools"}, input.Priorities)
	assert.Equal(t, 120000.0, input.Financial.AnnualIncome)
	assert.Equal(t, 15, input.Financial.LoanTermYears)
	assert.Equal(t, 400.0, input.Financial.MonthlyDebts)
}
