package hierarchy

import "go.uber.org/fx"

var Module = fx.Module("hierarchy",
	fx.Provide(NewProvisioner),
)
