package tokens

import (
	"context"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/carelog/carebot/pkg/log"
)

// Counter reports the model-token cost of a piece of text.
type Counter interface {
	Count(text string) int
}

// TiktokenCounter counts with the cl100k_base BPE, which is close
// enough for budget accounting across the supported backends.
type TiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func NewTiktoken() (*TiktokenCounter, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, err
	}
	return &TiktokenCounter{enc: enc}, nil
}

func (c *TiktokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(c.enc.Encode(text, nil, nil))
}

// HeuristicCounter approximates four runes per token. It deliberately
// rounds up so budget guarantees still hold when the BPE tables are
// unavailable.
type HeuristicCounter struct{}

func (HeuristicCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	return (utf8.RuneCountInString(text) + 3) / 4
}

// NewCounter returns the tiktoken counter, degrading to the heuristic
// when the encoding cannot be loaded.
func NewCounter(ctx context.Context) Counter {
	c, err := NewTiktoken()
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("tiktoken unavailable, using heuristic token counter")
		return HeuristicCounter{}
	}
	return c
}
