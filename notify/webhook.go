// Package notify delivers price-drop events to a webhook endpoint.
package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/use-agent/pricetrack/models"
)

// Event is the payload sent to the webhook endpoint when the lowest
// observed price undercuts the previous run's lowest.
type Event struct {
	Type      string                   `json:"type"` // "price.drop"
	ProductID string                   `json:"product_id"`
	Timestamp int64                    `json:"timestamp"`
	Previous  *float64                 `json:"previous_lowest"`
	Lowest    *models.ExtractionResult `json:"lowest"`
}

// Notifier posts signed events to a single endpoint. A Notifier with an
// empty URL is a no-op, so callers never need to branch on configuration.
type Notifier struct {
	URL    string
	Secret string

	wg sync.WaitGroup
}

// Wait blocks until every in-flight async delivery has finished. One-shot
// callers must invoke it before exiting or pending retries are lost.
func (n *Notifier) Wait() {
	if n == nil {
		return
	}
	n.wg.Wait()
}

// PriceDrop fires a price.drop event if the new lowest price undercuts the
// previous one. previous == nil means there is no baseline yet; no event.
func (n *Notifier) PriceDrop(productID string, previous *float64, lowest *models.ExtractionResult) {
	if n == nil || n.URL == "" || lowest == nil || lowest.Price == nil {
		return
	}
	if previous == nil || *lowest.Price >= *previous {
		return
	}
	n.deliverAsync(&Event{
		Type:      "price.drop",
		ProductID: productID,
		Timestamp: time.Now().Unix(),
		Previous:  previous,
		Lowest:    lowest,
	})
}

// Deliver sends an event synchronously. The request body is signed with
// HMAC-SHA256 if the secret is non-empty.
// Header: X-Pricetrack-Signature: sha256=<hex>
func (n *Notifier) Deliver(ctx context.Context, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("notify: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Pricetrack-Webhook/1.0")

	if n.Secret != "" {
		mac := hmac.New(sha256.New, []byte(n.Secret))
		mac.Write(body)
		sig := hex.EncodeToString(mac.Sum(nil))
		req.Header.Set("X-Pricetrack-Signature", "sha256="+sig)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: deliver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("notify: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// deliverAsync sends an event in the background with up to 3 retries.
// Retry intervals: 1s, 5s, 30s.
func (n *Notifier) deliverAsync(event *Event) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		delays := []time.Duration{0, 1 * time.Second, 5 * time.Second, 30 * time.Second}
		for attempt, delay := range delays {
			if delay > 0 {
				time.Sleep(delay)
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err := n.Deliver(ctx, event)
			cancel()
			if err == nil {
				slog.Info("webhook delivered",
					"url", n.URL, "event", event.Type, "attempt", attempt+1)
				return
			}
			slog.Warn("webhook delivery failed",
				"url", n.URL, "event", event.Type, "attempt", attempt+1, "error", err)
		}
		slog.Error("webhook delivery exhausted all retries",
			"url", n.URL, "event", event.Type)
	}()
}
