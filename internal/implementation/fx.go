package implementation

import (
	"github.com/thrivekit/thrivekit/internal/implementation/repository"
	"github.com/thrivekit/thrivekit/internal/implementation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("implementation",
	fx.Provide(repository.New),
	fx.Provide(service.NewService),
)
