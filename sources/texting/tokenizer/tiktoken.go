package tokenizer

import (
	"sync"
	"unicode/utf8"

	"fitcoach/sources/tracing"

	"github.com/pkoukk/tiktoken-go"
)

const encoding = "o200k_base"

// Counter counts prompt tokens. The encoding is loaded on first use; when it
// cannot be loaded the counter falls back to a four-characters-per-token estimate.
type Counter struct {
	once sync.Once
	tkm  *tiktoken.Tiktoken
	log  *tracing.Logger
}

func NewCounter(log *tracing.Logger) *Counter {
	return &Counter{log: log}
}

func (x *Counter) Tokens(text string) int {
	x.once.Do(func() {
		tkm, err := tiktoken.GetEncoding(encoding)
		if err != nil {
			x.log.W("Failed to load tokenizer encoding, estimating tokens", "encoding", encoding, tracing.InnerError, err)
			return
		}
		x.tkm = tkm
	})

	return tracing.ReportExecutionForRIn(x.log,
		func() int {
			if x.tkm == nil {
				return (utf8.RuneCountInString(text) + 3) / 4
			}
			return len(x.tkm.Encode(text, nil, nil))
		},
		func(l *tracing.Logger, tokens int) { l.D("Tokens counted", tracing.AiTokens, tokens) },
	)
}

// Budget clamps the requested completion size so that prompt and completion fit the context window.
func (x *Counter) Budget(requested, window int, prompts ...string) int {
	if x == nil || window <= 0 {
		return requested
	}

	used := 0
	for _, prompt := range prompts {
		used += x.Tokens(prompt)
	}

	available := window - used
	if available < 1 {
		available = 1
	}
	return min(requested, available)
}
