package network

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// ErrDimension reports an input or target vector whose length does not
// match the network's fixed dimensions.
var ErrDimension = errors.New("network: dimension mismatch")

// Pre-activation sums are clamped to this range before the sigmoid so
// extreme weights can never overflow into Inf/NaN.
const activationClamp = 500.0

// Config fixes the network's dimensions and learning rate at construction.
type Config struct {
	InputSize    int
	HiddenSize   int
	OutputSize   int
	LearningRate float64
}

// DefaultConfig returns the standard 64-32-8 topology with learning
// rate 0.15.
func DefaultConfig() Config {
	return Config{
		InputSize:    64,
		HiddenSize:   32,
		OutputSize:   8,
		LearningRate: 0.15,
	}
}

// Validate checks the config for usable dimensions.
func (c Config) Validate() error {
	if c.InputSize <= 0 || c.HiddenSize <= 0 || c.OutputSize <= 0 {
		return fmt.Errorf("network: sizes must be positive, got %d/%d/%d",
			c.InputSize, c.HiddenSize, c.OutputSize)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("network: learning rate must be > 0, got %g", c.LearningRate)
	}
	return nil
}

// Network holds the weight matrices and bias vectors of a two-layer
// feed-forward network. Weights are mutated in place by TrainStep and are
// never reset during normal operation.
type Network struct {
	cfg Config

	w1 [][]float64 // input x hidden
	w2 [][]float64 // hidden x output
	b1 []float64
	b2 []float64
}

// New creates a network with Gaussian(0, 0.5) weights and zero biases.
func New(cfg Config) (*Network, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	n := &Network{
		cfg: cfg,
		w1:  make([][]float64, cfg.InputSize),
		w2:  make([][]float64, cfg.HiddenSize),
		b1:  make([]float64, cfg.HiddenSize),
		b2:  make([]float64, cfg.OutputSize),
	}
	for i := range n.w1 {
		row := make([]float64, cfg.HiddenSize)
		for j := range row {
			row[j] = rand.NormFloat64() * 0.5
		}
		n.w1[i] = row
	}
	for j := range n.w2 {
		row := make([]float64, cfg.OutputSize)
		for k := range row {
			row[k] = rand.NormFloat64() * 0.5
		}
		n.w2[j] = row
	}
	return n, nil
}

// Config returns the dimensions the network was constructed with.
func (n *Network) Config() Config {
	return n.cfg
}

func sigmoid(x float64) float64 {
	if x > activationClamp {
		x = activationClamp
	} else if x < -activationClamp {
		x = -activationClamp
	}
	return 1 / (1 + math.Exp(-x))
}

// Forward runs one forward pass and returns the hidden and output
// activations. Every activation lies strictly inside (0, 1).
func (n *Network) Forward(input []float64) (hidden, output []float64, err error) {
	if len(input) != n.cfg.InputSize {
		return nil, nil, fmt.Errorf("%w: input length %d, want %d",
			ErrDimension, len(input), n.cfg.InputSize)
	}

	hidden = make([]float64, n.cfg.HiddenSize)
	for j := 0; j < n.cfg.HiddenSize; j++ {
		sum := n.b1[j]
		for i := 0; i < n.cfg.InputSize; i++ {
			sum += input[i] * n.w1[i][j]
		}
		hidden[j] = sigmoid(sum)
	}

	output = make([]float64, n.cfg.OutputSize)
	for k := 0; k < n.cfg.OutputSize; k++ {
		sum := n.b2[k]
		for j := 0; j < n.cfg.HiddenSize; j++ {
			sum += hidden[j] * n.w2[j][k]
		}
		output[k] = sigmoid(sum)
	}
	return hidden, output, nil
}

// Predict runs a forward pass and returns only the output activations.
func (n *Network) Predict(input []float64) ([]float64, error) {
	_, output, err := n.Forward(input)
	return output, err
}

// TrainStep applies one online back-propagation update toward targets and
// returns the mean squared error of the pre-update forward pass.
//
// Targets shorter than the output layer are right-padded by repeating
// their last element; an empty target slice is a precondition violation.
func (n *Network) TrainStep(input, targets []float64) (float64, error) {
	if len(targets) == 0 {
		return 0, fmt.Errorf("%w: empty target vector", ErrDimension)
	}
	hidden, output, err := n.Forward(input)
	if err != nil {
		return 0, err
	}

	t := make([]float64, n.cfg.OutputSize)
	for k := range t {
		if k < len(targets) {
			t[k] = targets[k]
		} else {
			t[k] = targets[len(targets)-1]
		}
	}

	errOut := make([]float64, n.cfg.OutputSize)
	for k, o := range output {
		errOut[k] = o * (1 - o) * (t[k] - o)
	}

	errHidden := make([]float64, n.cfg.HiddenSize)
	for j, h := range hidden {
		var sum float64
		for k := 0; k < n.cfg.OutputSize; k++ {
			sum += errOut[k] * n.w2[j][k]
		}
		errHidden[j] = h * (1 - h) * sum
	}

	lr := n.cfg.LearningRate
	for j := 0; j < n.cfg.HiddenSize; j++ {
		for k := 0; k < n.cfg.OutputSize; k++ {
			n.w2[j][k] += lr * errOut[k] * hidden[j]
		}
	}
	for k, e := range errOut {
		n.b2[k] += lr * e
	}
	for i := 0; i < n.cfg.InputSize; i++ {
		for j := 0; j < n.cfg.HiddenSize; j++ {
			n.w1[i][j] += lr * errHidden[j] * input[i]
		}
	}
	for j, e := range errHidden {
		n.b1[j] += lr * e
	}

	var loss float64
	for k, o := range output {
		d := t[k] - o
		loss += d * d
	}
	return loss / float64(n.cfg.OutputSize), nil
}
