package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/stixforge/stixforge/internal/config"
	"github.com/stixforge/stixforge/internal/job"
)

// extractRequest is the JSON body posted to a remote engine endpoint.
type extractRequest struct {
	Name             string   `json:"name"`
	Text             string   `json:"text"`
	RelationshipMode string   `json:"relationship_mode"`
	Extractions      []string `json:"use_extractions,omitempty"`
	AIModel          string   `json:"ai_settings,omitempty"`
	TLPLevel         string   `json:"tlp_level"`
	Confidence       *int     `json:"confidence,omitempty"`
	Labels           []string `json:"labels,omitempty"`
}

// RemoteEngine posts documents to an HTTP endpoint that runs the engine and
// responds with the bundle JSON. Used when --engine-url is set.
type RemoteEngine struct {
	URL    string
	Client *http.Client
}

// NewRemoteEngine builds a remote adapter from config.
func NewRemoteEngine(cfg *config.Config) *RemoteEngine {
	return &RemoteEngine{
		URL:    cfg.EngineURL,
		Client: &http.Client{}, // Per-task timeout comes from ctx.
	}
}

// Extract posts the task's document and writes the returned bundle to
// outputPath. A non-2xx response fails the task with the response body as
// the diagnostic.
func (e *RemoteEngine) Extract(ctx context.Context, task job.Task, outputPath string) (*Result, error) {
	start := time.Now()

	text, err := os.ReadFile(task.Document)
	if err != nil {
		return nil, fmt.Errorf("%w: reading document: %v", ErrEngineFailed, err)
	}

	reqBody := extractRequest{
		Name:             engineName(task.Stem),
		Text:             string(text),
		RelationshipMode: string(task.Mode.RelationshipMode),
		Extractions:      task.Extractions,
		TLPLevel:         string(task.Meta.TLPLevel),
		Labels:           task.Meta.Labels,
	}
	if task.Mode.IsAI() {
		reqBody.AIModel = task.Mode.AIModel
	}
	if task.Meta.Confidence != config.ConfidenceUnset {
		c := task.Meta.Confidence
		reqBody.Confidence = &c
	}

	bs, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding request: %v", ErrEngineFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.URL, bytes.NewReader(bs))
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ErrEngineFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())

	resp, err := e.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return &Result{Elapsed: time.Since(start)}, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrEngineFailed, err)
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	if readErr != nil {
		// A deadline expiring mid-body must surface as a timeout, not as a
		// truncated-bundle validation failure.
		if ctx.Err() != nil {
			return &Result{Elapsed: elapsed}, ctx.Err()
		}
		return &Result{Elapsed: elapsed}, fmt.Errorf("%w: reading response: %v", ErrEngineFailed, readErr)
	}

	if resp.StatusCode/100 != 2 {
		return &Result{Stderr: string(raw), Elapsed: elapsed},
			fmt.Errorf("%w: status %d", ErrEngineFailed, resp.StatusCode)
	}

	count, err := ValidateBundle(raw)
	if err != nil {
		return &Result{Stderr: string(raw), Elapsed: elapsed}, err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, fmt.Errorf("%w: placing bundle: %v", ErrEngineFailed, err)
	}
	if err := os.WriteFile(outputPath, raw, 0o644); err != nil {
		return nil, fmt.Errorf("%w: placing bundle: %v", ErrEngineFailed, err)
	}

	return &Result{
		OutputPath:  outputPath,
		ObjectCount: count,
		Elapsed:     elapsed,
	}, nil
}
