package envit5

import (
	"fmt"
	"os"
	"path/filepath"

	"envit5d/internal/common/fsutil"
)

// artifacts are the files a model directory must provide.
type artifacts struct {
	EncoderPath   string
	DecoderPath   string
	TokenizerPath string
	ConfigPath    string
}

var (
	encoderCandidates = []string{"encoder_model.onnx", "encoder.onnx"}
	decoderCandidates = []string{"decoder_model.onnx", "decoder.onnx"}
)

// ResolveModelDir expands a leading ~ and returns an absolute path, verifying
// the directory exists.
func ResolveModelDir(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("model dir is empty")
	}
	expanded, err := fsutil.ExpandHome(dir)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("resolving model dir: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("model dir %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("model dir %s is not a directory", abs)
	}
	return abs, nil
}

// locateArtifacts finds the encoder/decoder ONNX graphs, tokenizer and config
// inside dir. All four are required.
func locateArtifacts(dir string) (artifacts, error) {
	var a artifacts
	var err error

	a.EncoderPath, err = findFirst(dir, encoderCandidates)
	if err != nil {
		return a, fmt.Errorf("encoder: %w", err)
	}
	a.DecoderPath, err = findFirst(dir, decoderCandidates)
	if err != nil {
		return a, fmt.Errorf("decoder: %w", err)
	}
	a.TokenizerPath, err = findFirst(dir, []string{"tokenizer.json"})
	if err != nil {
		return a, err
	}
	a.ConfigPath, err = findFirst(dir, []string{"config.json"})
	if err != nil {
		return a, err
	}
	return a, nil
}

// findFirst returns the first candidate that exists in dir, searching dir
// itself and then an onnx/ subdirectory.
func findFirst(dir string, candidates []string) (string, error) {
	for _, sub := range []string{"", "onnx"} {
		for _, name := range candidates {
			p := filepath.Join(dir, sub, name)
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				return p, nil
			}
		}
	}
	return "", fmt.Errorf("none of %v found under %s", candidates, dir)
}
