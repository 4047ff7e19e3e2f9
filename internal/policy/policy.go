// Package policy maps inference results to alert decisions using the
// confidence threshold, debouncing and the rate-limit view of alert history.
package policy

import (
	"fmt"
	"log/slog"

	"github.com/agrisense/cropsentry-go/internal/alert"
	"github.com/agrisense/cropsentry-go/internal/conf"
	"github.com/agrisense/cropsentry-go/internal/inference"
	"github.com/agrisense/cropsentry-go/internal/logging"
)

// State is the per-cycle policy state.
type State int

const (
	StateIdle State = iota
	StateEvaluated
	StateAlerting
)

// String returns the state name used in logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateEvaluated:
		return "Evaluated"
	case StateAlerting:
		return "Alerting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Decision is the outcome of evaluating one inference result.
type Decision struct {
	Alert bool
	Type  alert.Type
	// Reason explains a non-alerting decision: "normal", "below-threshold",
	// "rate-limited" or "debouncing". Empty when alerting.
	Reason string
}

// AlertTypeFor maps a predicted class to its alert type. Normal maps to no
// alert. The switch is exhaustive over the class enum; a new class without a
// mapping fails loudly rather than being silently dropped.
func AlertTypeFor(c inference.Class) (alert.Type, bool) {
	switch c {
	case inference.ClassNormal:
		return "", false
	case inference.ClassWaterStress:
		return alert.TypeWaterStress, true
	case inference.ClassPestRisk:
		return alert.TypePestRisk, true
	default:
		panic(fmt.Sprintf("unhandled inference class %v", c))
	}
}

// Policy is the per-cycle decision state machine. Each cycle walks
// Idle -> Evaluated -> (Alerting ->) Idle; the only state carried across
// cycles is the debounce streak.
type Policy struct {
	threshold float64
	debounce  int
	history   *alert.History
	log       *slog.Logger

	state       State
	streakClass inference.Class
	streak      int
}

// New creates a policy with the configured threshold and debounce count,
// reading rate-limit state from the given history.
func New(settings *conf.ModelSettings, history *alert.History) *Policy {
	debounce := settings.DebounceCycles
	if debounce < 1 {
		debounce = 1
	}
	return &Policy{
		threshold: settings.ConfidenceThreshold,
		debounce:  debounce,
		history:   history,
		log:       logging.ForService("policy"),
	}
}

// State returns the current policy state. Outside Evaluate it is always
// Idle.
func (p *Policy) State() State {
	return p.state
}

// Evaluate runs the state machine for one inference result and returns the
// decision. The policy always returns to Idle before Evaluate returns; an
// alerting decision means the caller must hand the alert to the dispatcher,
// whose outcome does not feed back into the policy.
func (p *Policy) Evaluate(result *inference.Result) Decision {
	p.state = StateEvaluated
	defer func() { p.state = StateIdle }()

	alertType, actionable := AlertTypeFor(result.PredictedClass)
	if !actionable {
		p.resetStreak()
		return Decision{Reason: "normal"}
	}

	if result.Confidence <= p.threshold {
		p.resetStreak()
		p.log.Debug("below confidence threshold",
			"class", result.PredictedClass.String(),
			"confidence", result.Confidence,
			"threshold", p.threshold)
		return Decision{Reason: "below-threshold"}
	}

	p.extendStreak(result.PredictedClass)
	if p.streak < p.debounce {
		p.log.Debug("debouncing",
			"class", result.PredictedClass.String(),
			"streak", p.streak,
			"required", p.debounce)
		return Decision{Reason: "debouncing"}
	}

	if !p.history.Allow(alertType) {
		return Decision{Reason: "rate-limited"}
	}

	p.state = StateAlerting
	return Decision{Alert: true, Type: alertType}
}

// extendStreak counts consecutive qualifying cycles of the same class.
func (p *Policy) extendStreak(c inference.Class) {
	if p.streak > 0 && p.streakClass == c {
		p.streak++
		return
	}
	p.streakClass = c
	p.streak = 1
}

func (p *Policy) resetStreak() {
	p.streak = 0
}
