// Package webhook POSTs a fixed JSON envelope describing the instance and
// document to a configured URL. Success is any 2xx response.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/validoc/validoc/pkg/models"
	"github.com/validoc/validoc/pkg/protocol"
)

const defaultTimeout = 30 * time.Second

type Action struct {
	ID      string
	URL     string
	Event   string
	Headers map[string]string
	Timeout time.Duration

	client *http.Client
}

func NewAction(config map[string]any) (*Action, error) {
	id, _ := config["id"].(string)
	url, _ := config["url"].(string)
	event, _ := config["event"].(string)

	if event == "" {
		event = "workflow.action"
	}

	headers := make(map[string]string)
	if headersConfig, ok := config["headers"].(map[string]any); ok {
		for k, v := range headersConfig {
			if str, ok := v.(string); ok {
				headers[k] = str
			}
		}
	}

	timeout := defaultTimeout
	if seconds, ok := config["timeout"].(float64); ok && seconds > 0 {
		timeout = time.Duration(seconds) * time.Second
	}

	return &Action{
		ID:      id,
		URL:     url,
		Event:   event,
		Headers: headers,
		Timeout: timeout,
		client:  &http.Client{},
	}, nil
}

func (a *Action) Execute(ctx context.Context, actionCtx protocol.ActionContext, logger *slog.Logger) (*models.ActionResult, error) {
	if a.URL == "" {
		return &models.ActionResult{
			ActionID: a.ID,
			Success:  false,
			Message:  "no url configured for webhook",
		}, nil
	}

	envelope := map[string]any{
		"event":     a.Event,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"workflow": map[string]any{
			"instance_id":    actionCtx.Instance.ID,
			"definition_id":  actionCtx.Instance.WorkflowDefinitionID,
			"current_status": actionCtx.Instance.CurrentStatusID,
		},
		"document": map[string]any{
			"id":        actionCtx.Document.ID,
			"file_id":   actionCtx.Document.FileID,
			"file_name": actionCtx.Document.FileName,
			"status":    actionCtx.Document.Status,
		},
		"project": map[string]any{
			"id": actionCtx.Document.ProjectID,
		},
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, a.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, a.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range a.Headers {
		req.Header.Set(key, value)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return &models.ActionResult{
			ActionID: a.ID,
			Success:  false,
			Message:  fmt.Sprintf("webhook request to %s failed", a.URL),
			Error:    err.Error(),
		}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &models.ActionResult{
			ActionID: a.ID,
			Success:  false,
			Message:  fmt.Sprintf("webhook returned status %d", resp.StatusCode),
		}, nil
	}

	logger.Info("Webhook delivered", "url", a.URL, "status_code", resp.StatusCode)

	return &models.ActionResult{
		ActionID: a.ID,
		Success:  true,
		Message:  fmt.Sprintf("webhook delivered with status %d", resp.StatusCode),
		Data:     map[string]any{"status_code": resp.StatusCode},
	}, nil
}
