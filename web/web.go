package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"EmotionLens/internal/api/emotion"
	"EmotionLens/internal/entity"
)

//go:embed templates/*.tmpl
var templates embed.FS

//go:embed static
var static embed.FS

type Stat struct {
	Name  string
	Value string
}

type PageData struct {
	Title   string
	Stats   []Stat
	Model   []Stat
	Labels  []entity.LabelInfo
	WSPath  string
	APIBase string
}

type ResultData struct {
	Prediction emotion.PredictionResponse
	// Explain adds the "how the model works" note under the probabilities.
	Explain bool
}

type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templates, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

func (r *Renderer) Page(w io.Writer, data PageData) error {
	return r.tmpl.ExecuteTemplate(w, "page", data)
}

func (r *Renderer) Result(w io.Writer, data ResultData) error {
	return r.tmpl.ExecuteTemplate(w, "result", data)
}

// Static exposes the stylesheet and script rooted at "/".
func Static() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

func DefaultPageData(apiBase string) PageData {
	labels := make([]entity.LabelInfo, 0, entity.NumLabels)
	for _, l := range entity.Labels() {
		labels = append(labels, l.Info())
	}

	return PageData{
		Title: "AI Emotion Recognition",
		Stats: []Stat{
			{Name: "Classes", Value: fmt.Sprintf("%d emotions", entity.NumLabels)},
			{Name: "Input size", Value: "224 × 224"},
			{Name: "Mode", Value: "Live webcam"},
		},
		Model: []Stat{
			{Name: "Backbone", Value: "transfer-learning CNN"},
			{Name: "Input", Value: "224 × 224 RGB"},
			{Name: "Runtime", Value: "OpenCV DNN (ONNX)"},
			{Name: "Vision stack", Value: "OpenCV + Haar cascade"},
			{Name: "Server", Value: "Go · Fiber"},
		},
		Labels:  labels,
		WSPath:  apiBase + "/live/ws",
		APIBase: apiBase,
	}
}
