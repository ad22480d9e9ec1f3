package extract

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/people-finder/internal/model"
	"github.com/sells-group/people-finder/internal/resilience"
	"github.com/sells-group/people-finder/pkg/anthropic"
)

const (
	defaultMaxTokens = 4096
	defaultTimeout   = 60 * time.Second
	extractionTemp   = 0.1
)

// Extractor runs the LLM extraction call over shrinking-context variants
// of the compacted search hits, stopping at the first success. All
// failures are non-fatal: exhausting every variant yields an empty list.
type Extractor struct {
	ai      anthropic.Client
	model   string
	timeout time.Duration
}

// NewExtractor creates an Extractor. A zero timeout defaults to 60s.
func NewExtractor(ai anthropic.Client, model string, timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Extractor{ai: ai, model: model, timeout: timeout}
}

// Run extracts person candidates from raw search hits. Each variant gets
// one call; a timeout is logged as a warning (smaller input is expected
// to help) while any other failure is logged as an error, and in both
// cases the next smaller variant is tried.
func (e *Extractor) Run(ctx context.Context, hits []model.SearchHit) []model.Person {
	if len(hits) == 0 {
		return nil
	}

	variants := Variants(hits)
	for i, variant := range variants {
		candidates, err := e.attempt(ctx, variant)
		if err != nil {
			if resilience.IsTimeout(err) {
				zap.L().Warn("extract: attempt timed out, trying smaller context",
					zap.Int("attempt", i+1),
					zap.Int("hits", len(variant)),
				)
			} else {
				zap.L().Error("extract: attempt failed",
					zap.Int("attempt", i+1),
					zap.Int("hits", len(variant)),
					zap.Error(err),
				)
			}
			continue
		}

		out := make([]model.Person, 0, len(candidates))
		for _, c := range candidates {
			out = append(out, NormalizeCandidate(c))
		}
		return out
	}

	zap.L().Warn("extract: all variants exhausted, returning no candidates")
	return nil
}

func (e *Extractor) attempt(ctx context.Context, variant []CompactHit) ([]model.Person, error) {
	prompt, err := BuildUserPrompt(variant)
	if err != nil {
		return nil, eris.Wrap(err, "extract: build prompt")
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	temp := extractionTemp
	resp, err := e.ai.CreateMessage(callCtx, anthropic.MessageRequest{
		Model:       e.model,
		MaxTokens:   defaultMaxTokens,
		System:      systemPrompt,
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: &temp,
	})
	if err != nil {
		return nil, err
	}

	text := resp.Text()
	if text == "" {
		return nil, eris.New("extract: empty response body")
	}
	resp.Usage.LogUsage(e.model, "extract")

	candidates, err := ParseCandidates(RecoverJSON(text))
	if err != nil {
		return nil, err
	}
	return candidates, nil
}
