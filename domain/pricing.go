package domain

// PriceClass buckets an offer by how far it sits below asking price
type PriceClass string

const (
	PriceBlocked PriceClass = "blocked"
	PriceWarning PriceClass = "warning"
	PriceFair    PriceClass = "fair"
)

// Classification thresholds, in percent below asking.
const (
	blockThreshold = 40.0
	warnThreshold  = 20.0
)

// PriceAssessment is the derived classification of an offer amount
// against an asking price. Never persisted.
type PriceAssessment struct {
	PercentBelowAsking float64
	Class              PriceClass
}

// ClassifyPrice classifies an offer against an asking price. Offers at or
// above asking yield a zero or negative percentage and are always fair.
// This is the single shared implementation behind both the live preview
// and the submission gate; the two call sites must never disagree.
func ClassifyPrice(askingPrice, offerAmount int64) PriceAssessment {
	if askingPrice <= 0 {
		return PriceAssessment{PercentBelowAsking: 0, Class: PriceFair}
	}

	pct := float64(askingPrice-offerAmount) / float64(askingPrice) * 100

	switch {
	case pct >= blockThreshold:
		return PriceAssessment{PercentBelowAsking: pct, Class: PriceBlocked}
	case pct >= warnThreshold:
		return PriceAssessment{PercentBelowAsking: pct, Class: PriceWarning}
	default:
		return PriceAssessment{PercentBelowAsking: pct, Class: PriceFair}
	}
}
