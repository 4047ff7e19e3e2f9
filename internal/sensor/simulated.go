package sensor

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"
)

// Scenario selects which crop condition the simulated driver reproduces.
type Scenario int

const (
	ScenarioNormal Scenario = iota
	ScenarioWaterStress
	ScenarioPestRisk
	// ScenarioMixed picks a condition per cycle: mostly normal with
	// occasional stress and pest regimes.
	ScenarioMixed
)

// channelDist is the gaussian regime for one channel under one condition.
type channelDist struct {
	mean, sigma float64
}

// Regimes derived from field recordings: normal, water stress and pest risk
// conditions for moisture (%), temperature (C), humidity (%). Audio energy is
// uniform per condition.
var simRegimes = [3][3]channelDist{
	{{50, 8}, {25, 2}, {65, 10}},  // normal
	{{25, 6}, {35, 3}, {35, 8}},   // water stress
	{{45, 12}, {28, 4}, {55, 15}}, // pest risk
}

var simAudioRanges = [3][2]float64{
	{0.0, 0.3}, // normal
	{0.1, 0.4}, // water stress
	{0.6, 0.9}, // pest risk
}

// Simulated is a Port producing realistic farm readings without hardware.
// It is deterministic for a given seed.
type Simulated struct {
	mu       sync.Mutex
	scenario Scenario
	src      rand.Source
	rng      *rand.Rand
	voltage  float64
	drain    float64 // volts lost per battery read
	asleep   bool

	// condition chosen for the current cycle under ScenarioMixed; refreshed
	// on each Moisture read, which leads every acquisition pass.
	condition int
}

// NewSimulated creates a simulated sensor port for the given scenario.
func NewSimulated(scenario Scenario, seed uint64) *Simulated {
	src := rand.NewPCG(seed, seed)
	return &Simulated{
		scenario:  scenario,
		src:       src,
		rng:       rand.New(src),
		voltage:   4.1,
		drain:     0.002,
		condition: int(scenarioCondition(scenario)),
	}
}

func scenarioCondition(s Scenario) Scenario {
	if s == ScenarioMixed {
		return ScenarioNormal
	}
	return s
}

// ReadChannel returns a plausible reading for the channel under the active
// condition, clamped to the physical range.
func (s *Simulated) ReadChannel(ctx context.Context, c Channel) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c == Moisture && s.scenario == ScenarioMixed {
		s.rollCondition()
	}

	switch c {
	case Moisture:
		return clamp(s.gaussian(simRegimes[s.condition][0]), 0, 100), nil
	case Temperature:
		return clamp(s.gaussian(simRegimes[s.condition][1]), 10, 50), nil
	case Humidity:
		return clamp(s.gaussian(simRegimes[s.condition][2]), 0, 100), nil
	case AudioEnergy:
		r := simAudioRanges[s.condition]
		u := distuv.Uniform{Min: r[0], Max: r[1], Src: s.src}
		return clamp(u.Rand(), 0, 1), nil
	default:
		return 0, fmt.Errorf("unknown channel %v", c)
	}
}

// rollCondition picks the cycle's condition: 60 % normal, 20 % water stress,
// 20 % pest risk.
func (s *Simulated) rollCondition() {
	p := s.rng.Float64()
	switch {
	case p < 0.6:
		s.condition = int(ScenarioNormal)
	case p < 0.8:
		s.condition = int(ScenarioWaterStress)
	default:
		s.condition = int(ScenarioPestRisk)
	}
}

func (s *Simulated) gaussian(d channelDist) float64 {
	n := distuv.Normal{Mu: d.mean, Sigma: d.sigma, Src: s.src}
	return n.Rand()
}

// BatteryVoltage reports a slowly draining battery with measurement jitter.
func (s *Simulated) BatteryVoltage(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.voltage = math.Max(2.8, s.voltage-s.drain)
	jitter := distuv.Normal{Mu: 0, Sigma: 0.01, Src: s.src}.Rand()
	return s.voltage + jitter, nil
}

// SetVoltage overrides the simulated battery level. Used by tests and the
// benchmark command.
func (s *Simulated) SetVoltage(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voltage = v
	s.drain = 0
}

// Sleep marks the simulated sensors as suspended.
func (s *Simulated) Sleep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.asleep = true
}

// Wake resumes the simulated sensors.
func (s *Simulated) Wake() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.asleep = false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
