package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/homescout-ai/homescout/internal/model"
)

var runFlags struct {
	priceMin     float64
	priceMax     float64
	bedroomsMin  float64
	bathroomsMin float64
	propertyType string
	keywords     []string
	priorities   []string

	income       float64
	downPayment  float64
	interestRate float64
	loanTerm     int
	monthlyDebts float64
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one recommendation query and print the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx, "run")
		if err != nil {
			return err
		}
		defer env.Close()

		input := queryInputFromRunFlags()
		set, err := env.Pipeline.Run(ctx, input)
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		zap.L().Info("recommendation complete",
			zap.String("tier_shown", string(set.TierShown)),
			zap.Int("surfaced", len(set.Records)),
			zap.Int("total", set.Summary.TotalListings),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(set), "encode result")
	},
}

func queryInputFromRunFlags() model.QueryInput {
	return model.QueryInput{
		Criteria: model.SearchCriteria{
			PriceMin:     runFlags.priceMin,
			PriceMax:     runFlags.priceMax,
			BedroomsMin:  runFlags.bedroomsMin,
			BathroomsMin: runFlags.bathroomsMin,
			PropertyType: runFlags.propertyType,
			Keywords:     runFlags.keywords,
		},
		Financial: model.FinancialInfo{
			AnnualIncome:       runFlags.income,
			DownPaymentPercent: runFlags.downPayment,
			InterestRate:       runFlags.interestRate,
			LoanTermYears:      runFlags.loanTerm,
			MonthlyDebts:       runFlags.monthlyDebts,
		},
		Priorities: runFlags.priorities,
	}
}

func init() {
	f := runCmd.Flags()
	f.Float64Var(&runFlags.priceMin, "price-min", 0, "minimum listing price")
	f.Float64Var(&runFlags.priceMax, "price-max", 0, "maximum listing price")
	f.Float64Var(&runFlags.bedroomsMin, "bedrooms-min", 0, "minimum bedrooms")
	f.Float64Var(&runFlags.bathroomsMin, "bathrooms-min", 0, "minimum bathrooms")
	f.StringVar(&runFlags.propertyType, "property-type", "", "property type (e.g. single_family, condo)")
	f.StringSliceVar(&runFlags.keywords, "keywords", nil, "listing keywords to match")
	f.StringSliceVar(&runFlags.priorities, "priorities", nil, "buyer priorities rewarded in scoring")
	f.Float64Var(&runFlags.income, "income", 0, "annual gross income (default from config)")
	f.Float64Var(&runFlags.downPayment, "down-payment", 0, "down payment percent (default from config)")
	f.Float64Var(&runFlags.interestRate, "interest-rate", 0, "mortgage interest rate percent (default from config)")
	f.IntVar(&runFlags.loanTerm, "loan-term", 0, "loan term in years (default from config)")
	f.Float64Var(&runFlags.monthlyDebts, "monthly-debts", 0, "existing monthly debt payments")
	rootCmd.AddCommand(runCmd)
}
