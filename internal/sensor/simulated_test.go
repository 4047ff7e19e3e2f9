package sensor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrisense/cropsentry-go/internal/sensor"
)

func TestSimulatedReadingsStayInPhysicalRange(t *testing.T) {
	ranges := map[sensor.Channel][2]float64{
		sensor.Moisture:    {0, 100},
		sensor.Temperature: {10, 50},
		sensor.Humidity:    {0, 100},
		sensor.AudioEnergy: {0, 1},
	}

	for _, scenario := range []sensor.Scenario{
		sensor.ScenarioNormal,
		sensor.ScenarioWaterStress,
		sensor.ScenarioPestRisk,
		sensor.ScenarioMixed,
	} {
		port := sensor.NewSimulated(scenario, 1)
		for range 200 {
			for _, c := range sensor.Channels {
				v, err := port.ReadChannel(context.Background(), c)
				require.NoError(t, err)
				r := ranges[c]
				assert.GreaterOrEqual(t, v, r[0], "scenario %v channel %s", scenario, c)
				assert.LessOrEqual(t, v, r[1], "scenario %v channel %s", scenario, c)
			}
		}
	}
}

func TestSimulatedIsDeterministicPerSeed(t *testing.T) {
	a := sensor.NewSimulated(sensor.ScenarioMixed, 7)
	b := sensor.NewSimulated(sensor.ScenarioMixed, 7)

	for range 50 {
		for _, c := range sensor.Channels {
			va, err := a.ReadChannel(context.Background(), c)
			require.NoError(t, err)
			vb, err := b.ReadChannel(context.Background(), c)
			require.NoError(t, err)
			assert.Equal(t, va, vb)
		}
	}
}

func TestSimulatedPestRiskAudioIsElevated(t *testing.T) {
	port := sensor.NewSimulated(sensor.ScenarioPestRisk, 3)

	for range 100 {
		v, err := port.ReadChannel(context.Background(), sensor.AudioEnergy)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, 0.6)
		assert.LessOrEqual(t, v, 0.9)
	}
}

func TestSimulatedBatteryDrains(t *testing.T) {
	port := sensor.NewSimulated(sensor.ScenarioNormal, 1)

	first, err := port.BatteryVoltage(context.Background())
	require.NoError(t, err)

	var last float64
	for range 100 {
		last, err = port.BatteryVoltage(context.Background())
		require.NoError(t, err)
	}

	assert.Less(t, last, first)
	assert.GreaterOrEqual(t, last, 2.7)
}

func TestSimulatedSetVoltage(t *testing.T) {
	port := sensor.NewSimulated(sensor.ScenarioNormal, 1)
	port.SetVoltage(3.0)

	v, err := port.BatteryVoltage(context.Background())
	require.NoError(t, err)
	// Only measurement jitter remains after the override.
	assert.InDelta(t, 3.0, v, 0.1)
}

func TestSimulatedHonorsContextCancellation(t *testing.T) {
	port := sensor.NewSimulated(sensor.ScenarioNormal, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := port.ReadChannel(ctx, sensor.Moisture)
	assert.Error(t, err)
	_, err = port.BatteryVoltage(ctx)
	assert.Error(t, err)
}
