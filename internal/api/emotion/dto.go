package emotion

import (
	"fmt"
	"image"

	"EmotionLens/internal/entity"
)

const AlignFaceMessage = "Align your face with the camera."

// Websocket message types pushed by the live stream.
const (
	MessageFrame   = "frame"
	MessageInfo    = "info"
	MessageError   = "error"
	MessageStopped = "stopped"
)

// ActionStop is the only control message accepted on the live websocket.
const ActionStop = "stop"

type UploadRequest struct {
	FileName  string `validate:"required"`
	Extension string `validate:"required,oneof=jpg jpeg png"`
	Size      int64  `validate:"gt=0"`
}

// UploadDetection is the outcome of locating faces on an uploaded image.
type UploadDetection struct {
	Faces   []entity.FaceRegion
	Preview image.Image
}

type UploadAnalysis struct {
	UploadDetection
	Prediction entity.PredictionResult
}

// LiveFrame is one iteration of the live loop handed to a FrameSink.
type LiveFrame struct {
	Index      int
	Image      image.Image
	Faces      []entity.FaceRegion
	Prediction *entity.PredictionResult
}

type ProbabilityResponse struct {
	Label       string  `json:"label"`
	Emoji       string  `json:"emoji"`
	Color       string  `json:"color"`
	Probability float64 `json:"probability"`
	Percent     string  `json:"percent"`
}

type PredictionResponse struct {
	Label          string                `json:"label"`
	Emoji          string                `json:"emoji"`
	Color          string                `json:"color"`
	Description    string                `json:"description"`
	Confidence     float64               `json:"confidence"`
	ConfidenceText string                `json:"confidence_text"`
	Predictions    map[string]float64    `json:"predictions"`
	Probabilities  []ProbabilityResponse `json:"probabilities"`
}

func NewPredictionResponse(p entity.PredictionResult) PredictionResponse {
	info := p.Label.Info()

	probs := make([]ProbabilityResponse, 0, entity.NumLabels)
	for _, lp := range p.Sorted() {
		li := lp.Label.Info()
		probs = append(probs, ProbabilityResponse{
			Label:       li.Name,
			Emoji:       li.Emoji,
			Color:       li.Color,
			Probability: lp.Probability,
			Percent:     FormatPercent(lp.Probability),
		})
	}

	return PredictionResponse{
		Label:          info.Name,
		Emoji:          info.Emoji,
		Color:          info.Color,
		Description:    info.Description,
		Confidence:     p.Confidence,
		ConfidenceText: "Confidence: " + FormatPercent(p.Confidence),
		Predictions:    p.ByLabel(),
		Probabilities:  probs,
	}
}

func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

type DetectResponse struct {
	Faces   []entity.FaceRegion `json:"faces"`
	Preview string              `json:"preview"`
}

type AnalyzeResponse struct {
	Faces      []entity.FaceRegion `json:"faces"`
	Preview    string              `json:"preview"`
	Prediction PredictionResponse  `json:"prediction"`
	ResultHTML string              `json:"result_html,omitempty"`
}

type LabelsResponse struct {
	Labels []entity.LabelInfo `json:"labels"`
}

type LiveStatusResponse struct {
	Active         bool                `json:"active"`
	LastPrediction *PredictionResponse `json:"last_prediction,omitempty"`
}

func NewLiveStatusResponse(s entity.SessionState) LiveStatusResponse {
	resp := LiveStatusResponse{Active: s.Active}
	if s.LastPrediction != nil {
		p := NewPredictionResponse(*s.LastPrediction)
		resp.LastPrediction = &p
	}
	return resp
}

type LiveMessage struct {
	Type       string              `json:"type"`
	Image      string              `json:"image,omitempty"`
	Faces      []entity.FaceRegion `json:"faces,omitempty"`
	Prediction *PredictionResponse `json:"prediction,omitempty"`
	ResultHTML string              `json:"result_html,omitempty"`
	Message    string              `json:"message,omitempty"`
}

type LiveControl struct {
	Action string `json:"action" validate:"required,oneof=stop"`
}
