package domain

// Urgency ranks how soon a replenishment order must be placed.
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyMedium   Urgency = "medium"
	UrgencyLow      Urgency = "low"
)

// UrgencyTiers lists the tiers from most to least urgent, for grouped
// reporting.
var UrgencyTiers = []Urgency{UrgencyCritical, UrgencyHigh, UrgencyMedium, UrgencyLow}

// UrgencyFor maps days-until-stockout to an urgency tier.
func UrgencyFor(daysUntilStockout int) Urgency {
	switch {
	case daysUntilStockout <= 0:
		return UrgencyCritical
	case daysUntilStockout <= 7:
		return UrgencyHigh
	case daysUntilStockout <= 14:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// ExpeditedLeadTime shortens the effective lead time when an order is
// urgent: critical saves 3 days, high saves 2, with a floor of 1 day.
func ExpeditedLeadTime(leadTimeDays int, urgency Urgency) int {
	effective := leadTimeDays
	switch urgency {
	case UrgencyCritical:
		effective -= 3
	case UrgencyHigh:
		effective -= 2
	}
	if effective < 1 {
		effective = 1
	}

	return effective
}
