package caching

import "go.uber.org/fx"

var Module = fx.Module("caching",
	fx.Provide(
		fx.Annotate(NewRedisStore, fx.As(new(Store))),
		NewResponseCache,
	),
)
