// Package tokens counts tokens the way OpenAI models see them.
package tokens

import (
	"github.com/go-go-golems/ragged/pkg/chat"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/tiktoken-go/tokenizer"
)

// perMessageOverhead approximates the role and separator tokens OpenAI adds
// around every chat message.
const perMessageOverhead = 4

type Counter struct {
	codec tokenizer.Codec
}

// NewCounter returns a counter for model. Unknown or empty models fall back
// to the cl100k_base encoding.
func NewCounter(model string) (*Counter, error) {
	if model != "" {
		c, err := tokenizer.ForModel(tokenizer.Model(model))
		if err == nil {
			return &Counter{codec: c}, nil
		}
		log.Debug().Err(err).Str("model", model).Msg("no tokenizer for model, using cl100k_base")
	}
	return NewCounterForEncoding(string(tokenizer.Cl100kBase))
}

func NewCounterForEncoding(encoding string) (*Counter, error) {
	c, err := tokenizer.Get(tokenizer.Encoding(encoding))
	if err != nil {
		return nil, errors.Wrapf(err, "could not create tokenizer for %s", encoding)
	}
	return &Counter{codec: c}, nil
}

func (c *Counter) Encoding() string {
	return c.codec.GetName()
}

func (c *Counter) Count(text string) (int, error) {
	ids, _, err := c.codec.Encode(text)
	if err != nil {
		return 0, errors.Wrap(err, "could not encode text")
	}
	return len(ids), nil
}

// CountTranscript estimates the prompt tokens of t. Error messages are not
// sent to providers and are skipped.
func (c *Counter) CountTranscript(t chat.Transcript) (int, error) {
	total := 0
	for _, m := range t {
		if m.Type == chat.MessageTypeError {
			continue
		}
		n, err := c.Count(m.Text)
		if err != nil {
			return 0, err
		}
		total += n + perMessageOverhead
	}
	return total, nil
}
