package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
	"github.com/theapemachine/a2a-go/pkg/a2a"
)

// pushTimeout bounds a single delivery attempt (spec §5: 10s push timeout).
const pushTimeout = 10 * time.Second

// maxDeliveryAttempts bounds the bounded retry spec §7 allows for push
// delivery: "implementations may add bounded retry with exponential
// backoff."
const maxDeliveryAttempts = 3

// Notifier delivers task events to a task's registered push-notification
// callback URL, signed with the sender's key set.
type Notifier struct {
	Keys   *KeySet
	Client *http.Client
}

func NewNotifier(keys *KeySet) *Notifier {
	return &Notifier{
		Keys:   keys,
		Client: &http.Client{Timeout: pushTimeout},
	}
}

// newBackOff builds the bounded exponential backoff policy a single
// delivery retries under.
func newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = time.Minute
	b.Multiplier = 2.0
	return backoff.WithContext(backoff.WithMaxRetries(b, maxDeliveryAttempts-1), ctx)
}

// Notify signs and POSTs event to cfg.URL, retrying transient failures with
// bounded exponential backoff per spec §7.
func (n *Notifier) Notify(ctx context.Context, cfg a2a.PushNotificationConfig, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("push: marshal event: %w", err)
	}

	token, err := n.Keys.SignDelivery(body)
	if err != nil {
		return fmt.Errorf("push: sign delivery: %w", err)
	}

	attempt := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.URL, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		if cfg.Token != nil {
			req.Header.Set("X-Task-Token", *cfg.Token)
		}

		resp, err := n.Client.Do(req)
		if err != nil {
			log.Warn("push delivery attempt failed", "url", cfg.URL, "err", err)
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("push: receiver returned status %d", resp.StatusCode)
		}
		return nil
	}

	if err := backoff.Retry(attempt, newBackOff(ctx)); err != nil {
		return fmt.Errorf("push: delivery to %s failed after retries: %w", cfg.URL, err)
	}
	return nil
}
