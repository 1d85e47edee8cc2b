package web

import (
	"bytes"
	"io/fs"
	"strings"
	"testing"

	"EmotionLens/internal/api/emotion"
	"EmotionLens/internal/entity"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r
}

func TestPageListsEveryLabel(t *testing.T) {
	var buf bytes.Buffer
	if err := newRenderer(t).Page(&buf, DefaultPageData("/api/v1")); err != nil {
		t.Fatal(err)
	}
	html := buf.String()
	for _, l := range entity.Labels() {
		info := l.Info()
		if !strings.Contains(html, info.Name) || !strings.Contains(html, info.Emoji) {
			t.Errorf("page is missing chip for %s", info.Name)
		}
	}
	for _, want := range []string{"Session overview", "7 emotions", "224 × 224", "🎥 Live Detection", "📸 Image Upload", `data-ws="/api/v1/live/ws"`} {
		if !strings.Contains(html, want) {
			t.Errorf("page is missing %q", want)
		}
	}
}

func TestResultRendersSortedProbabilities(t *testing.T) {
	p := entity.PredictionResult{Label: entity.Happy, Confidence: 0.873}
	p.Probabilities[entity.Happy] = 0.873
	p.Probabilities[entity.Sad] = 0.1
	p.Probabilities[entity.Angry] = 0.027

	var buf bytes.Buffer
	err := newRenderer(t).Result(&buf, ResultData{Prediction: emotion.NewPredictionResponse(p), Explain: true})
	if err != nil {
		t.Fatal(err)
	}
	html := buf.String()

	if !strings.Contains(html, "Confidence: 87.3%") {
		t.Fatal("missing confidence text")
	}
	if !strings.Contains(html, "How the model works.") {
		t.Fatal("missing explanation box")
	}
	happy := strings.Index(html, `<div class="prediction-name">Happy`)
	sad := strings.Index(html, `<div class="prediction-name">Sad`)
	angry := strings.Index(html, `<div class="prediction-name">Angry`)
	if happy < 0 || sad < 0 || angry < 0 || !(happy < sad && sad < angry) {
		t.Fatalf("probabilities not sorted descending: happy=%d sad=%d angry=%d", happy, sad, angry)
	}
	if !strings.Contains(html, "#facc15") {
		t.Fatal("happy color missing")
	}
}

func TestResultWithoutExplanation(t *testing.T) {
	var buf bytes.Buffer
	p := entity.PredictionResult{Label: entity.Neutral, Confidence: 1}
	p.Probabilities[entity.Neutral] = 1
	if err := newRenderer(t).Result(&buf, ResultData{Prediction: emotion.NewPredictionResponse(p)}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "How the model works.") {
		t.Fatal("live results must not carry the explanation box")
	}
}

func TestStaticAssets(t *testing.T) {
	for _, name := range []string{"style.css", "app.js"} {
		if _, err := fs.Stat(Static(), name); err != nil {
			t.Errorf("static asset %s: %v", name, err)
		}
	}
}
