package billing

import (
	"github.com/thrivekit/thrivekit/internal/billing/repository"
	"github.com/thrivekit/thrivekit/internal/billing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billing",
	fx.Provide(repository.New),
	fx.Provide(service.NewService),
)
