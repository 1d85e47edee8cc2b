package entity

type SessionState struct {
	Active         bool
	LastPrediction *PredictionResult
}
