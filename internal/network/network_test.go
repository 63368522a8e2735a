package network

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fernwehlabs/sift/internal/encoder"
)

func newTestNetwork(t *testing.T) *Network {
	t.Helper()
	n, err := New(DefaultConfig())
	require.NoError(t, err)
	return n
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", DefaultConfig(), false},
		{"zero input", Config{InputSize: 0, HiddenSize: 4, OutputSize: 2, LearningRate: 0.1}, true},
		{"zero hidden", Config{InputSize: 4, HiddenSize: 0, OutputSize: 2, LearningRate: 0.1}, true},
		{"zero output", Config{InputSize: 4, HiddenSize: 4, OutputSize: 0, LearningRate: 0.1}, true},
		{"zero learning rate", Config{InputSize: 4, HiddenSize: 4, OutputSize: 2, LearningRate: 0}, true},
		{"negative learning rate", Config{InputSize: 4, HiddenSize: 4, OutputSize: 2, LearningRate: -0.5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestForward_OutputsInOpenUnitInterval(t *testing.T) {
	n := newTestNetwork(t)

	for _, text := range []string{"", "hello", "a much longer piece of text to classify"} {
		input := encoder.Encode(text, n.Config().InputSize)
		hidden, output, err := n.Forward(input)
		require.NoError(t, err)
		require.Len(t, hidden, n.Config().HiddenSize)
		require.Len(t, output, n.Config().OutputSize)

		for _, v := range append(hidden, output...) {
			assert.Greater(t, v, 0.0)
			assert.Less(t, v, 1.0)
			assert.False(t, math.IsNaN(v))
		}
	}
}

func TestForward_DimensionMismatch(t *testing.T) {
	n := newTestNetwork(t)

	_, _, err := n.Forward(make([]float64, n.Config().InputSize+1))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimension)

	_, err = n.Predict(nil)
	assert.ErrorIs(t, err, ErrDimension)

	_, err = n.TrainStep(make([]float64, 3), []float64{1})
	assert.ErrorIs(t, err, ErrDimension)
}

func TestTrainStep_EmptyTargets(t *testing.T) {
	n := newTestNetwork(t)
	_, err := n.TrainStep(make([]float64, n.Config().InputSize), nil)
	assert.ErrorIs(t, err, ErrDimension)
}

func TestTrainStep_LossDecreases(t *testing.T) {
	n := newTestNetwork(t)
	input := encoder.Encode("repeated training sample", n.Config().InputSize)
	targets := []float64{1, 1, 1, 1, 1, 1, 1, 1}

	prev, err := n.TrainStep(input, targets)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		loss, err := n.TrainStep(input, targets)
		require.NoError(t, err)
		assert.Less(t, loss, prev, "loss must strictly decrease on step %d", i+1)
		prev = loss
	}
}

func TestTrainStep_PadsShortTargets(t *testing.T) {
	n := newTestNetwork(t)
	input := encoder.Encode("short target", n.Config().InputSize)

	// A single-element target is repeated across all output units, so it
	// must behave like the fully expanded vector on a fresh step.
	_, err := n.TrainStep(input, []float64{0})
	require.NoError(t, err)

	out, err := n.Predict(input)
	require.NoError(t, err)
	for _, v := range out {
		assert.Less(t, v, 1.0)
	}
}

func TestTrainStep_ConvergesTowardTarget(t *testing.T) {
	n := newTestNetwork(t)
	input := encoder.Encode("definitely inappropriate", n.Config().InputSize)
	targets := []float64{1}

	for i := 0; i < 50; i++ {
		_, err := n.TrainStep(input, targets)
		require.NoError(t, err)
	}
	out, err := n.Predict(input)
	require.NoError(t, err)
	assert.Greater(t, out[0], 0.7, "unit 0 should approach the all-ones target")
}

func TestSigmoid_ClampsExtremes(t *testing.T) {
	assert.Equal(t, sigmoid(1e9), sigmoid(activationClamp))
	assert.Equal(t, sigmoid(-1e9), sigmoid(-activationClamp))
	assert.False(t, math.IsNaN(sigmoid(math.Inf(1))))
	assert.False(t, math.IsNaN(sigmoid(math.Inf(-1))))
	assert.Greater(t, sigmoid(-1e9), 0.0)
	assert.Less(t, sigmoid(1e9), 1.0)
}
