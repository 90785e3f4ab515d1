package events

import (
	"fmt"
	"io"

	"github.com/go-go-golems/ragged/pkg/chat"
	"gopkg.in/yaml.v3"
)

// PrinterFunc returns a handler that writes a human readable trace of chat
// events to w. Final events print the transcript as YAML.
func PrinterFunc(name string, w io.Writer) func(ev chat.Event) error {
	return func(ev chat.Event) error {
		prefix := ""
		if name != "" {
			prefix = name + " "
		}

		switch ev.Type {
		case chat.EventTypeStart:
			recording := "off"
			if ev.Recording {
				recording = "on"
			}
			_, err := fmt.Fprintf(w, "\n%s[%s] %s (recording %s, %d messages)\n",
				prefix, ev.Type, ev.ID, recording, len(ev.Transcript))
			return err

		case chat.EventTypeFinal:
			v_, err := yaml.Marshal(ev.Transcript)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(w, "%s[%s] %s\n%s", prefix, ev.Type, ev.ID, v_)
			return err

		case chat.EventTypeError:
			_, err := fmt.Fprintf(w, "%s[%s] %s: %s\n", prefix, ev.Type, ev.ID, ev.Error)
			return err

		default:
			_, err := fmt.Fprintf(w, "%s[%s] %s\n", prefix, ev.Type, ev.ID)
			return err
		}
	}
}
