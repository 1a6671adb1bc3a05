package payment

import (
	"github.com/thrivekit/thrivekit/internal/config"
	"github.com/thrivekit/thrivekit/internal/providers/payment/domain"
	"github.com/thrivekit/thrivekit/internal/providers/payment/stripe"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.payment",
	fx.Provide(func(cfg config.Config) domain.ChargeRetriever {
		return stripe.NewClient(cfg.StripeBaseURL, cfg.StripeAPIKey)
	}),
)
