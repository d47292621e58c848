// Package classifier runs the Python food-image model as a subprocess and
// parses its prediction output.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/nutriwise/nutriwise-api/internal/config"
	"github.com/nutriwise/nutriwise-api/internal/metrics"
	"github.com/nutriwise/nutriwise-api/pkg/logger"
)

var (
	// ErrNoOutput is returned when the script produced no parseable result.
	ErrNoOutput = errors.New("classifier produced no output")
	// ErrPredictionFailed is returned when the script reported success=false.
	ErrPredictionFailed = errors.New("classifier prediction failed")
)

// Prediction is the classification result for a single image.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// scriptResult mirrors the JSON object the Python script prints as its
// last line of stdout.
type scriptResult struct {
	Success    bool    `json:"success"`
	ClassIndex int     `json:"class_index"`
	Confidence float64 `json:"confidence"`
	Error      string  `json:"error"`
}

// Classifier invokes the Python inference script for each request. The
// script loads the model itself, so no state is held between calls.
type Classifier struct {
	pythonBin  string
	scriptPath string
	timeout    time.Duration
	log        *logger.Logger
}

// New creates a Classifier from configuration. It verifies the script
// exists so misconfiguration fails at startup rather than on first request.
func New(cfg config.ClassifierConfig, log *logger.Logger) (*Classifier, error) {
	if _, err := os.Stat(cfg.ScriptPath); err != nil {
		return nil, fmt.Errorf("classifier script not found: %w", err)
	}
	return &Classifier{
		pythonBin:  cfg.PythonBin,
		scriptPath: cfg.ScriptPath,
		timeout:    time.Duration(cfg.TimeoutSeconds) * time.Second,
		log:        log,
	}, nil
}

// Classify runs the script against the image at path and returns the
// predicted label. The subprocess is killed if it exceeds the configured
// timeout.
func (c *Classifier) Classify(ctx context.Context, imagePath string) (*Prediction, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.pythonBin, c.scriptPath, imagePath)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	metrics.ClassifierDurationSeconds.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ClassifierRunsTotal.WithLabelValues("error").Inc()
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("classifier timed out after %s", c.timeout)
		}
		c.log.Error().
			Err(err).
			Str("stderr", lastLines(stderr.String(), 5)).
			Msg("Classifier subprocess failed")
		return nil, fmt.Errorf("run classifier: %w", err)
	}

	result, err := parseResult(stdout.String())
	if err != nil {
		metrics.ClassifierRunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if !result.Success {
		metrics.ClassifierRunsTotal.WithLabelValues("failed").Inc()
		if result.Error != "" {
			return nil, fmt.Errorf("%w: %s", ErrPredictionFailed, result.Error)
		}
		return nil, ErrPredictionFailed
	}

	label, err := labelForIndex(result.ClassIndex)
	if err != nil {
		metrics.ClassifierRunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.ClassifierRunsTotal.WithLabelValues("ok").Inc()
	c.log.Debug().
		Str("label", label).
		Float64("confidence", result.Confidence).
		Dur("elapsed", time.Since(start)).
		Msg("Image classified")

	return &Prediction{Label: label, Confidence: result.Confidence}, nil
}

// parseResult extracts the trailing JSON object from stdout. The script may
// print framework noise before the result, so only the text between the
// first '{' and the last '}' is decoded.
func parseResult(out string) (*scriptResult, error) {
	start := strings.Index(out, "{")
	end := strings.LastIndex(out, "}")
	if start == -1 || end == -1 || end < start {
		return nil, ErrNoOutput
	}

	var result scriptResult
	if err := json.Unmarshal([]byte(out[start:end+1]), &result); err != nil {
		return nil, fmt.Errorf("decode classifier output: %w", err)
	}
	return &result, nil
}

// labelForIndex maps a model class index to its label.
func labelForIndex(idx int) (string, error) {
	if idx < 0 || idx >= len(foodLabels) {
		return "", fmt.Errorf("class index %d out of range", idx)
	}
	return foodLabels[idx], nil
}

// lastLines returns at most n trailing lines of s for log output.
func lastLines(s string, n int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
