package alerting

import (
	"github.com/thrivekit/thrivekit/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("alerting",
	fx.Provide(func(cfg config.Config, log *zap.Logger) Provider {
		if cfg.AlertWebhookURL != "" {
			return NewWebhookProvider(cfg.AlertWebhookURL, cfg.AlertChannel, log)
		}
		return NewLogProvider(log)
	}),
)
