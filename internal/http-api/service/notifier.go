package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Notifier announces newly cached dramas to the external push-campaign
// service. Delivery mechanics live entirely on that side; this only fires the
// trigger, best-effort.
type Notifier struct {
	triggerURL string
	httpClient *http.Client
}

// NewNotifier creates a notifier. An empty trigger URL disables it.
func NewNotifier(triggerURL string) *Notifier {
	return &Notifier{
		triggerURL: triggerURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// NotifyNewDrama sends the new-drama trigger (async, non-blocking).
func (n *Notifier) NotifyNewDrama(dramaID, tmdbID int64, name string) {
	if n == nil || n.triggerURL == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		payload := map[string]interface{}{
			"drama_id": dramaID,
			"tmdb_id":  tmdbID,
			"name":     name,
		}

		if err := n.send(ctx, "/notify/new-drama", payload); err != nil {
			log.Printf("[Notifier] failed to send new drama notification for '%s': %v", name, err)
		} else {
			log.Printf("[Notifier] sent new drama notification: %s (tmdb_id=%d)", name, tmdbID)
		}
	}()
}

func (n *Notifier) send(ctx context.Context, endpoint string, payload map[string]interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.triggerURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return nil
}
