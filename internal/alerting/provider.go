// Package alerting is the operational alert side-channel. Services use
// it for conditions an operator should see that are not request errors.
package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type Provider interface {
	Notice(ctx context.Context, summary string, details string) error
}

// LogProvider routes alerts to the structured log. Default when no
// webhook is configured.
type LogProvider struct {
	log *zap.Logger
}

func NewLogProvider(log *zap.Logger) *LogProvider {
	return &LogProvider{log: log.Named("alerting")}
}

func (p *LogProvider) Notice(ctx context.Context, summary string, details string) error {
	p.log.Warn("operational alert",
		zap.String("summary", summary),
		zap.String("details", details))
	return nil
}

// WebhookProvider posts alerts to a Slack-compatible incoming webhook.
type WebhookProvider struct {
	webhookURL string
	channel    string
	httpClient *http.Client
	log        *zap.Logger
}

func NewWebhookProvider(webhookURL, channel string, log *zap.Logger) *WebhookProvider {
	return &WebhookProvider{
		webhookURL: webhookURL,
		channel:    channel,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log.Named("alerting"),
	}
}

func (p *WebhookProvider) Notice(ctx context.Context, summary string, details string) error {
	body, err := json.Marshal(map[string]string{
		"channel": p.channel,
		"text":    fmt.Sprintf("%s\n%s", summary, details),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.log.Error("alert delivery failed", zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		err := fmt.Errorf("alert webhook returned status %d", resp.StatusCode)
		p.log.Error("alert delivery failed", zap.Error(err))
		return err
	}
	return nil
}
