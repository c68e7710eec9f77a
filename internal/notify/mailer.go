// Package notify delivers onboarding emails through a buffered queue and an
// HTTP mail API.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Message is one outgoing email in the mail API's JSON shape.
type Message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// HTTPMailer posts messages to a transactional mail API. Transport errors and
// 5xx responses are retried.
type HTTPMailer struct {
	client   *resty.Client
	endpoint string
	log      *zap.Logger
}

func NewHTTPMailer(endpoint, apiKey string, log *zap.Logger) *HTTPMailer {
	client := resty.New().
		SetTimeout(10*time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1*time.Second).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		})
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &HTTPMailer{client: client, endpoint: endpoint, log: log}
}

func (m *HTTPMailer) Send(ctx context.Context, msg Message) error {
	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(msg).
		Post(m.endpoint)
	if err != nil {
		return fmt.Errorf("mail API request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("mail API returned status %d", resp.StatusCode())
	}
	m.log.Debug("email accepted", zap.String("to", msg.To), zap.Int("status", resp.StatusCode()))
	return nil
}

// LogMailer only logs messages. Used when no mail API is configured.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.log.Info("email not sent, no mail API configured",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}
