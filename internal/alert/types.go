// Package alert builds alert records and dispatches them over the wireless
// transport with rate limiting and bounded retry.
package alert

// Type identifies the kind of alert on the wire.
type Type string

const (
	TypeWaterStress Type = "water_stress"
	TypePestRisk    Type = "pest_risk"
	TypeLowBattery  Type = "low_battery"
	TypeSystemError Type = "system_error"
)

// Recommendation returns the operator guidance attached to each alert type.
func (t Type) Recommendation() string {
	switch t {
	case TypeWaterStress:
		return "Initiate irrigation in affected area"
	case TypePestRisk:
		return "Inspect crops for pest activity and consider treatment"
	case TypeLowBattery:
		return "Check solar panel and charging system"
	case TypeSystemError:
		return "Monitor situation"
	default:
		return "Monitor situation"
	}
}

// Outcome is the result of a dispatch attempt, reported as a value rather
// than an error: a rate-limited alert is a normal suppressed outcome, not a
// failure.
type Outcome int

const (
	// OutcomeSent means at least one transmission attempt succeeded.
	OutcomeSent Outcome = iota
	// OutcomeRateLimited means the alert was suppressed by the per-type
	// minimum interval. Alert history is unchanged.
	OutcomeRateLimited
	// OutcomeFailed means all transmission attempts were exhausted.
	// Alert history is unchanged; no automatic resend happens before the
	// next qualifying decision cycle.
	OutcomeFailed
)

// String returns the outcome name used in logs and the datastore.
func (o Outcome) String() string {
	switch o {
	case OutcomeSent:
		return "sent"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}
