//go:build !gcloud

package taskqueue

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/KasumiMercury/primind-countdown/internal/observability/logging"
	"github.com/KasumiMercury/primind-countdown/internal/observability/tracing"
)

type PrimindTasksClient struct {
	baseURL    string
	queueName  string
	httpClient *http.Client
	maxRetries int
}

func NewPrimindTasksClient(baseURL, queueName string, maxRetries int) *PrimindTasksClient {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if queueName == "" {
		queueName = "default"
	}
	return &PrimindTasksClient{
		baseURL:   baseURL,
		queueName: queueName,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries: maxRetries,
	}
}

func (c *PrimindTasksClient) queueURL() string {
	if c.queueName == "default" {
		return fmt.Sprintf("%s/tasks", c.baseURL)
	}
	return fmt.Sprintf("%s/tasks/%s", c.baseURL, url.PathEscape(c.queueName))
}

func (c *PrimindTasksClient) RegisterNotification(ctx context.Context, task *NotificationTask) (*TaskResponse, error) {
	payload, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification task: %w", err)
	}

	primindReq := PrimindTaskRequest{
		Task: PrimindTask{
			Name: task.TaskID,
			HTTPRequest: PrimindHTTPRequest{
				Body: base64.StdEncoding.EncodeToString(payload),
				Headers: map[string]string{
					"Content-Type": "application/json",
				},
			},
		},
	}

	if !task.ScheduleAt.IsZero() {
		primindReq.Task.ScheduleTime = task.ScheduleAt.UTC().Format(time.RFC3339Nano)
	}

	reqBody, err := json.Marshal(primindReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal primind request: %w", err)
	}

	return withRetry(ctx, "register", task.TaskID, c.maxRetries, func() (*TaskResponse, error) {
		return c.doRegister(ctx, reqBody, task)
	})
}

func (c *PrimindTasksClient) doRegister(ctx context.Context, reqBody []byte, task *NotificationTask) (*TaskResponse, error) {
	endpoint := c.queueURL()

	slog.Debug("registering notification to Primind Tasks",
		slog.String("url", endpoint),
		slog.String("task_id", task.TaskID),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	setOutgoingHeaders(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("failed to send request to Primind Tasks",
			slog.String("task_id", task.TaskID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		slog.Warn("unexpected status code from Primind Tasks",
			slog.String("task_id", task.TaskID),
			slog.Int("status_code", resp.StatusCode),
		)
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var primindResp PrimindTaskResponse
	if err := json.NewDecoder(resp.Body).Decode(&primindResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	scheduleTime, _ := time.Parse(time.RFC3339, primindResp.ScheduleTime)
	createTime, _ := time.Parse(time.RFC3339, primindResp.CreateTime)

	slog.Info("notification task registered to Primind Tasks",
		slog.String("task_name", primindResp.Name),
		slog.String("task_id", task.TaskID),
	)

	return &TaskResponse{
		Name:         primindResp.Name,
		ScheduleTime: scheduleTime,
		CreateTime:   createTime,
	}, nil
}

// DeleteTask removes a pending task. A task that no longer exists counts as deleted.
func (c *PrimindTasksClient) DeleteTask(ctx context.Context, taskID string) error {
	endpoint := fmt.Sprintf("%s/tasks/%s/%s", c.baseURL, url.PathEscape(c.queueName), url.PathEscape(taskID))

	_, err := withRetry(ctx, "delete", taskID, c.maxRetries, func() (struct{}, error) {
		return struct{}{}, c.doDelete(ctx, endpoint, taskID)
	})
	return err
}

func (c *PrimindTasksClient) doDelete(ctx context.Context, endpoint, taskID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	setOutgoingHeaders(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("failed to send delete request to Primind Tasks",
			slog.String("task_id", taskID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		slog.Info("task deleted from Primind Tasks", slog.String("task_id", taskID))
		return nil
	case http.StatusNotFound:
		slog.Info("task not found in Primind Tasks (may have been processed)",
			slog.String("task_id", taskID),
		)
		return nil
	default:
		slog.Warn("unexpected status code from Primind Tasks",
			slog.String("task_id", taskID),
			slog.Int("status_code", resp.StatusCode),
		)
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
}

func setOutgoingHeaders(ctx context.Context, req *http.Request) {
	requestID := logging.ValidateAndExtractRequestID(logging.RequestIDFromContext(ctx))
	req.Header.Set("x-request-id", requestID)
	tracing.InjectToHTTPRequest(ctx, req)
}
