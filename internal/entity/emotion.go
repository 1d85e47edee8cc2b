package entity

import "sort"

type EmotionLabel uint8

const (
	Angry EmotionLabel = iota
	Disgust
	Fear
	Happy
	Neutral
	Sad
	Surprise

	NumLabels = int(Surprise) + 1
)

const (
	FallbackColor = "#6366f1"
	FallbackEmoji = "😊"
)

type LabelInfo struct {
	Name        string `json:"name"`
	Emoji       string `json:"emoji"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// labelTable is indexed by EmotionLabel; its order must match the network output order.
var labelTable = [NumLabels]LabelInfo{
	Angry: {
		Name:        "Angry",
		Emoji:       "😠",
		Color:       "#ef4444",
		Description: "Facial cues suggest irritation, frustration, or anger.",
	},
	Disgust: {
		Name:        "Disgust",
		Emoji:       "🤢",
		Color:       "#8b4513",
		Description: "Expression indicates dislike or aversion to something.",
	},
	Fear: {
		Name:        "Fear",
		Emoji:       "😨",
		Color:       "#a855f7",
		Description: "Signals of anxiety or concern are visible in the face.",
	},
	Happy: {
		Name:        "Happy",
		Emoji:       "😊",
		Color:       "#facc15",
		Description: "Smile and relaxed features show positive affect.",
	},
	Neutral: {
		Name:        "Neutral",
		Emoji:       "😐",
		Color:       "#9ca3af",
		Description: "No strong emotional expression; a calm resting face.",
	},
	Sad: {
		Name:        "Sad",
		Emoji:       "😢",
		Color:       "#3b82f6",
		Description: "Drooping features suggest sadness or low mood.",
	},
	Surprise: {
		Name:        "Surprise",
		Emoji:       "😲",
		Color:       "#fb923c",
		Description: "Raised brows and open eyes indicate surprise or shock.",
	},
}

func Labels() []EmotionLabel {
	out := make([]EmotionLabel, NumLabels)
	for i := range out {
		out[i] = EmotionLabel(i)
	}
	return out
}

func (l EmotionLabel) Valid() bool {
	return int(l) < NumLabels
}

// Info returns the presentation entry for l, or the indigo fallback for out-of-range values.
func (l EmotionLabel) Info() LabelInfo {
	if !l.Valid() {
		return LabelInfo{Name: "Unknown", Emoji: FallbackEmoji, Color: FallbackColor}
	}
	return labelTable[l]
}

func (l EmotionLabel) String() string {
	return l.Info().Name
}

func ParseLabel(name string) (EmotionLabel, bool) {
	for i, info := range labelTable {
		if info.Name == name {
			return EmotionLabel(i), true
		}
	}
	return 0, false
}

type LabelProbability struct {
	Label       EmotionLabel
	Probability float64
}

type PredictionResult struct {
	Label         EmotionLabel
	Confidence    float64
	Probabilities [NumLabels]float64
}

func (p PredictionResult) ByLabel() map[string]float64 {
	out := make(map[string]float64, NumLabels)
	for i, prob := range p.Probabilities {
		out[EmotionLabel(i).String()] = prob
	}
	return out
}

// Sorted lists every label by descending probability; equal values keep label order.
func (p PredictionResult) Sorted() []LabelProbability {
	out := make([]LabelProbability, 0, NumLabels)
	for i, prob := range p.Probabilities {
		out = append(out, LabelProbability{Label: EmotionLabel(i), Probability: prob})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Probability > out[j].Probability
	})
	return out
}
