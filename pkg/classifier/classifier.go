package classifier

import (
	"fmt"
	"image"
	"math"

	"EmotionLens/internal/entity"
	"EmotionLens/pkg/model"
	"EmotionLens/pkg/vision"

	"gonum.org/v1/gonum/floats"
)

const sumTolerance = 1e-3

type OutputSizeError struct {
	Got int
}

func (e *OutputSizeError) Error() string {
	return fmt.Sprintf("network returned %d scores, want %d", e.Got, entity.NumLabels)
}

type IClassifier interface {
	Classify(face image.Image) (entity.PredictionResult, error)
	ClassifyTensor(input vision.Tensor) (entity.PredictionResult, error)
}

type classifier struct {
	net model.Network
}

func New(net model.Network) IClassifier {
	return &classifier{net: net}
}

func (c *classifier) Classify(face image.Image) (entity.PredictionResult, error) {
	input, err := vision.Preprocess(face)
	if err != nil {
		return entity.PredictionResult{}, fmt.Errorf("preprocess face: %w", err)
	}
	return c.ClassifyTensor(input)
}

func (c *classifier) ClassifyTensor(input vision.Tensor) (entity.PredictionResult, error) {
	raw, err := c.net.Forward(input)
	if err != nil {
		return entity.PredictionResult{}, fmt.Errorf("forward pass: %w", err)
	}
	return Distribution(raw)
}

// Distribution turns raw network output into a PredictionResult. Output that is
// already a probability vector is kept as is; anything else goes through softmax.
// The dominant label is the first index holding the maximum.
func Distribution(raw []float32) (entity.PredictionResult, error) {
	if len(raw) != entity.NumLabels {
		return entity.PredictionResult{}, &OutputSizeError{Got: len(raw)}
	}

	probs := make([]float64, len(raw))
	for i, v := range raw {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return entity.PredictionResult{}, fmt.Errorf("network returned non-finite score at index %d", i)
		}
		probs[i] = float64(v)
	}
	if !isDistribution(probs) {
		softmax(probs)
	}

	idx := floats.MaxIdx(probs)
	res := entity.PredictionResult{
		Label:      entity.EmotionLabel(idx),
		Confidence: probs[idx],
	}
	copy(res.Probabilities[:], probs)
	return res, nil
}

func isDistribution(p []float64) bool {
	if floats.Min(p) < 0 || floats.Max(p) > 1 {
		return false
	}
	return math.Abs(floats.Sum(p)-1) <= sumTolerance
}

func softmax(p []float64) {
	floats.AddConst(-floats.Max(p), p)
	for i := range p {
		p[i] = math.Exp(p[i])
	}
	floats.Scale(1/floats.Sum(p), p)
}
