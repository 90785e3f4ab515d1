package cmds

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/go-go-golems/ragged/pkg/chat"
	"github.com/go-go-golems/ragged/pkg/settings"
	"github.com/go-go-golems/ragged/pkg/support/jsonx"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// loadSettings reads the settings from the config file and environment and
// applies the --api-type and --model overrides.
func loadSettings() (*settings.Settings, error) {
	s, err := settings.FromViper(viper.GetViper())
	if err != nil {
		return nil, err
	}
	if apiType := viper.GetString("api-type"); apiType != "" {
		s.Chat.ApiType = settings.ApiType(apiType)
	}
	if model := viper.GetString("model"); model != "" {
		s.Chat.Model = model
	}
	if err := s.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid settings")
	}
	return s, nil
}

type outputFormat string

const (
	outputText outputFormat = "text"
	outputYAML outputFormat = "yaml"
	outputJSON outputFormat = "json"
)

func parseOutputFormat(s string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(s)); f {
	case outputText, outputYAML, outputJSON:
		return f, nil
	default:
		return "", errors.Errorf("unknown output format %q (text, yaml, json)", s)
	}
}

type printer struct {
	w      io.Writer
	format outputFormat
	render bool
}

func newPrinter(w io.Writer, format outputFormat, render bool) *printer {
	return &printer{
		w:      w,
		format: format,
		render: render && isatty.IsTerminal(os.Stdout.Fd()),
	}
}

func (p *printer) PrintTranscript(t chat.Transcript) error {
	switch p.format {
	case outputYAML:
		enc := yaml.NewEncoder(p.w)
		defer func() {
			_ = enc.Close()
		}()
		return enc.Encode(t)
	case outputJSON:
		s, err := jsonx.StringifyIndent(t)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(p.w, s)
		return err
	}

	for _, m := range t {
		if err := p.printMessage(m); err != nil {
			return err
		}
	}
	return nil
}

func (p *printer) printMessage(m chat.Message) error {
	text := m.Text
	if p.render && m.Type == chat.MessageTypeBot {
		styled, err := glamour.Render(text, "dark")
		if err != nil {
			log.Debug().Err(err).Msg("could not render markdown")
		} else {
			_, err = fmt.Fprintf(p.w, "[%s]:%s", m.Type, styled)
			return err
		}
	}
	_, err := fmt.Fprintf(p.w, "[%s]: %s\n", m.Type, strings.TrimRight(text, "\n"))
	return err
}

// afterLastUserMessage returns the messages produced for the latest prompt.
func afterLastUserMessage(t chat.Transcript) chat.Transcript {
	for i := len(t) - 1; i >= 0; i-- {
		if t[i].Type == chat.MessageTypeUser {
			return t[i+1:].Clone()
		}
	}
	return t.Clone()
}
