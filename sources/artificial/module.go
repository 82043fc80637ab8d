package artificial

import (
	"fitcoach/sources/texting/tokenizer"

	"go.uber.org/fx"
)

var Module = fx.Module(
	"artificial",
	fx.Provide(
		tokenizer.NewCounter,
		NewOpenRouterClient,
		NewOpenAIClient,
		NewOpenRouterCompleter,
		NewOpenAICompleter,
		NewCompleter,
	),
)
