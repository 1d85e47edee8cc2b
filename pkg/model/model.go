package model

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"EmotionLens/pkg/vision"
)

const DefaultModelFile = "mod_my_model01.onnx"

// Network is a loaded, read-only inference handle.
type Network interface {
	Forward(input vision.Tensor) ([]float32, error)
	Close() error
}

// Backend reads a model artifact from disk.
type Backend func(path string) (Network, error)

type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load model %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Candidates lists model locations in probe order. exeDir may be empty.
func Candidates(exeDir string) []string {
	c := []string{
		DefaultModelFile,
		filepath.Join("..", DefaultModelFile),
		filepath.Join("..", "model", DefaultModelFile),
	}
	if exeDir != "" {
		parent := filepath.Dir(exeDir)
		c = append(c,
			filepath.Join(parent, DefaultModelFile),
			filepath.Join(parent, "model", DefaultModelFile),
		)
	}
	return c
}

// ResolvePath returns the first candidate that exists, or DefaultModelFile.
func ResolvePath(candidates []string, exists func(string) bool) string {
	if exists == nil {
		exists = fileExists
	}
	for _, c := range candidates {
		if exists(c) {
			return c
		}
	}
	return DefaultModelFile
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

type ILoader interface {
	Load(path string) (Network, error)
	Close() error
}

type loader struct {
	backend Backend
	mu      sync.Mutex
	cache   map[string]Network
}

func NewLoader(backend Backend) ILoader {
	return &loader{
		backend: backend,
		cache:   make(map[string]Network),
	}
}

// Load returns the cached handle for path, reading the file only on first use.
// Failed loads are not cached.
func (l *loader) Load(path string) (Network, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n, ok := l.cache[path]; ok {
		return n, nil
	}

	if _, err := os.Stat(path); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	n, err := l.backend(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	l.cache[path] = n
	return n, nil
}

func (l *loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var firstErr error
	for path, n := range l.cache {
		if err := n.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close model %q: %w", path, err)
		}
		delete(l.cache, path)
	}
	return firstErr
}
