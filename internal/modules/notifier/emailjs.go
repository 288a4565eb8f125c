package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// EmailConfig holds the transactional-email provider settings. The provider
// is addressed by a service id, a template id and a public key; the payload
// is delivered as flat template parameters.
type EmailConfig struct {
	BaseURL    string
	ServiceID  string
	TemplateID string
	PublicKey  string
	Timeout    time.Duration
}

// Configured reports whether all provider identifiers are present.
func (c EmailConfig) Configured() bool {
	return c.BaseURL != "" && c.ServiceID != "" && c.TemplateID != "" && c.PublicKey != ""
}

type emailChannel struct {
	cfg     EmailConfig
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*Receipt]
}

// NewEmailChannel creates the transactional-email adapter. Sends run through
// a circuit breaker so a misbehaving provider is not hammered with requests.
func NewEmailChannel(cfg EmailConfig) Channel {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	cb := gobreaker.NewCircuitBreaker[*Receipt](gobreaker.Settings{
		Name:    "delivery-channel",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 4
		},
	})
	return &emailChannel{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: cb,
	}
}

func (c *emailChannel) Send(ctx context.Context, p Payload) (*Receipt, error) {
	receipt, err := c.breaker.Execute(func() (*Receipt, error) {
		return c.send(ctx, p)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, &SendRejectedError{Reason: ReasonRateLimited, Message: "delivery channel circuit open"}
	}
	return receipt, err
}

func (c *emailChannel) send(ctx context.Context, p Payload) (*Receipt, error) {
	body, err := json.Marshal(map[string]interface{}{
		"service_id":      c.cfg.ServiceID,
		"template_id":     c.cfg.TemplateID,
		"user_id":         c.cfg.PublicKey,
		"template_params": p,
	})
	if err != nil {
		return nil, &SendRejectedError{Reason: ReasonBadPayload, Message: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/api/v1.0/email/send", bytes.NewReader(body))
	if err != nil {
		return nil, &SendRejectedError{Reason: ReasonBadPayload, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &SendRejectedError{Reason: ReasonNetwork, Message: err.Error()}
	}
	defer resp.Body.Close()

	text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return &Receipt{Status: resp.StatusCode, Text: string(text)}, nil
	}
	return nil, &SendRejectedError{
		Reason:  classifyStatus(resp.StatusCode),
		Status:  resp.StatusCode,
		Message: string(text),
	}
}

// Ping verifies the provider endpoint answers at all. Any HTTP response
// counts as reachable; only transport failures fail the probe.
func (c *emailChannel) Ping(ctx context.Context) error {
	if !c.cfg.Configured() {
		return fmt.Errorf("delivery channel not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.cfg.BaseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("delivery channel unreachable: %w", err)
	}
	resp.Body.Close()
	return nil
}

// classifyStatus maps a provider HTTP status to an internal rejection reason.
func classifyStatus(status int) Reason {
	switch {
	case status == http.StatusTooManyRequests:
		return ReasonRateLimited
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ReasonUnauthorized
	case status >= 400 && status < 500:
		return ReasonBadPayload
	case status >= 500:
		return ReasonNetwork
	default:
		return ReasonUnknown
	}
}
