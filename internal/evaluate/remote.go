package evaluate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/me/codelab/pkg/model"
)

// RemoteEvaluator sends submissions to the backend evaluation endpoint
// instead of running them locally.
type RemoteEvaluator struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewRemoteEvaluator creates an evaluator client for the given backend.
func NewRemoteEvaluator(baseURL string, timeout time.Duration, logger *slog.Logger) *RemoteEvaluator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RemoteEvaluator{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "remote-evaluator"),
	}
}

// Evaluate posts the submission and decodes the verdict from the standard
// response envelope. Service failures surface as *ServiceError.
func (e *RemoteEvaluator) Evaluate(ctx context.Context, ex *model.Exercise, code string) (*model.EvaluationResult, error) {
	body, err := json.Marshal(model.EvaluateRequest{ExerciseID: ex.ID, Code: code})
	if err != nil {
		return nil, fmt.Errorf("marshal evaluation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		e.baseURL+"/api/v1/evaluate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, &ServiceError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, &ServiceError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("HTTP %d: %s", resp.StatusCode, respBody),
		}
	}

	var envelope struct {
		Data  json.RawMessage `json:"data"`
		Error *model.APIError `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, &ServiceError{Err: fmt.Errorf("decode response: %w", err)}
	}
	if envelope.Error != nil {
		return nil, &ServiceError{Err: envelope.Error}
	}

	var result model.EvaluationResult
	if err := json.Unmarshal(envelope.Data, &result); err != nil {
		return nil, &ServiceError{Err: fmt.Errorf("decode result: %w", err)}
	}
	return &result, nil
}
