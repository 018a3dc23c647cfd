package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tunedhq/tuned-core/internal/config"
)

// PushClient delivers real-time alerts to the push gateway. Delivery is
// best effort; callers log and move on when it fails.
type PushClient interface {
	Send(ctx context.Context, userID uint, title, message, link string) error
}

type pushClientImpl struct {
	httpClient *http.Client
	webhookURL string
}

func NewPushClient(pushCfg *config.Push) PushClient {
	return &pushClientImpl{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		webhookURL: pushCfg.WebhookURL,
	}
}

func (c *pushClientImpl) Send(ctx context.Context, userID uint, title, message, link string) error {
	if c.webhookURL == "" {
		return nil
	}

	payload := map[string]interface{}{
		"user_id": userID,
		"title":   title,
		"message": message,
		"link":    link,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("push gateway returned %d", resp.StatusCode)
	}
	return nil
}
