package pipeline

import (
	"fmt"
	"strings"

	"github.com/homescout-ai/homescout/internal/model"
)

// BuildWriteup renders a plain-language writeup of the top ranked listing.
// The output is deterministic; an optional language model pass may polish
// it afterwards but never replaces it as the source of truth.
func BuildWriteup(rec model.AnalysisRecord) string {
	var sb strings.Builder

	listing := rec.Listing
	title := listing.Address
	if title == "" {
		title = "Listing " + listing.ID
	}
	fmt.Fprintf(&sb, "Top pick: %s\n", title)
	fmt.Fprintf(&sb, "Price: $%.0f", listing.Price)
	if listing.Bedrooms > 0 {
		fmt.Fprintf(&sb, " | %g bed", listing.Bedrooms)
	}
	if listing.Bathrooms > 0 {
		fmt.Fprintf(&sb, " | %g bath", listing.Bathrooms)
	}
	if listing.SquareFootage > 0 {
		fmt.Fprintf(&sb, " | %.0f sqft", listing.SquareFootage)
	}
	fmt.Fprintf(&sb, "\nOverall score: %.0f/100\n", rec.CompositeScore)

	if rec.Affordability.OK() {
		aff := rec.Affordability.Value
		if aff.IsAffordable {
			fmt.Fprintf(&sb,
				"\nAffordability: estimated %.0f/month all-in, which fits your budget with about $%.0f/month to spare.\n",
				aff.Costs.Total, aff.MonthlySurplus)
		} else {
			fmt.Fprintf(&sb,
				"\nAffordability: estimated %.0f/month all-in, which exceeds your target payment of $%.0f.\n",
				aff.Costs.Total, aff.MaxMonthlyPayment)
		}
	}

	if rec.Locality.OK() {
		loc := rec.Locality.Value
		fmt.Fprintf(&sb, "Neighborhood: rated %s", loc.Rating)
		if loc.WalkabilityScore > 0 {
			fmt.Fprintf(&sb, " with walkability %d/10", loc.WalkabilityScore)
		}
		sb.WriteString(".\n")
	}

	if rec.Hazard.OK() && rec.Hazard.Value.Summary != "" {
		fmt.Fprintf(&sb, "Safety: %s\n", rec.Hazard.Value.Summary)
	}

	if len(rec.Pros) > 0 {
		sb.WriteString("\nHighlights:\n")
		for _, pro := range rec.Pros {
			fmt.Fprintf(&sb, "- %s\n", pro)
		}
	}
	if len(rec.Cons) > 0 {
		sb.WriteString("\nWatch out for:\n")
		for _, con := range rec.Cons {
			fmt.Fprintf(&sb, "- %s\n", con)
		}
	}

	return sb.String()
}
