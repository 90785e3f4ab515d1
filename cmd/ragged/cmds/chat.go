package cmds

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-go-golems/ragged/pkg/chat"
	"github.com/go-go-golems/ragged/pkg/chat/factory"
	"github.com/go-go-golems/ragged/pkg/events"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tcnksm/go-input"
	"golang.org/x/sync/errgroup"
)

const chatTopic = "chat"

type chatFlags struct {
	interactive bool
	record      bool
	system      string
	output      string
	render      bool
	printEvents bool
}

func NewChatCommand() *cobra.Command {
	flags := &chatFlags{}
	cmd := &cobra.Command{
		Use:   "chat [prompt]",
		Short: "Send a prompt to the configured provider, or chat interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !flags.interactive {
				return errors.New("a prompt is required unless --interactive is set")
			}
			prompt := ""
			if len(args) > 0 {
				prompt = args[0]
			}
			return runChat(cmd.Context(), flags, prompt)
		},
	}

	cmd.Flags().BoolVarP(&flags.interactive, "interactive", "i", false, "Keep chatting after the first answer")
	cmd.Flags().BoolVar(&flags.record, "record", false, "Record the conversation (always on with --interactive)")
	cmd.Flags().StringVar(&flags.system, "system", "", "System prompt")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "text", "Output format (text, yaml, json)")
	cmd.Flags().BoolVar(&flags.render, "render", true, "Render markdown answers when writing to a terminal")
	cmd.Flags().BoolVar(&flags.printEvents, "print-events", false, "Print chat events to stderr")

	return cmd
}

// withEventRouter runs f while a router logs the chat events published to
// the sink it hands to f, and prints them to stderr when printEvents is set.
func withEventRouter(ctx context.Context, printEvents bool, f func(ctx context.Context, sink chat.EventSink) error) error {
	router, err := events.NewRouter(events.WithVerbose(
		viper.GetBool("verbose"),
		events.WithCaller(viper.GetBool("with-caller")),
	))
	if err != nil {
		return err
	}
	router.AddHandler("log-chat-events", chatTopic, func(ev chat.Event) error {
		log.Debug().
			Str("id", ev.ID.String()).
			Str("type", string(ev.Type)).
			Bool("recording", ev.Recording).
			Int("messages", len(ev.Transcript)).
			Str("error", ev.Error).
			Msg("chat event")
		return nil
	})
	if printEvents {
		router.AddHandler("print-chat-events", chatTopic, events.PrinterFunc("ragged", os.Stderr))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return router.Run(ctx)
	})
	eg.Go(func() error {
		defer cancel()
		<-router.Running()
		return f(ctx, router.Sink(chatTopic))
	})

	return eg.Wait()
}

func runChat(ctx context.Context, flags *chatFlags, prompt string) error {
	format, err := parseOutputFormat(flags.output)
	if err != nil {
		return err
	}
	s, err := loadSettings()
	if err != nil {
		return err
	}

	return withEventRouter(ctx, flags.printEvents, func(ctx context.Context, sink chat.EventSink) error {
		c, err := factory.NewChat(ctx, s, nil,
			chat.WithEventSink(sink),
			chat.WithRecording(flags.record || flags.interactive),
		)
		if err != nil {
			return err
		}

		p := newPrinter(os.Stdout, format, flags.render)
		var system chat.Transcript
		if flags.system != "" {
			system = chat.Transcript{chat.NewSystemMessage(flags.system)}
		}

		if !flags.interactive {
			t := c.Chat(ctx, prompt, system)
			if err := p.PrintTranscript(afterLastUserMessage(t)); err != nil {
				return err
			}
			if t.Failed() {
				return errors.New("the provider call failed")
			}
			return nil
		}

		return repl(ctx, c, p, prompt, system)
	})
}

// repl reads prompts until an empty line, /exit or EOF. The system prompt is
// only passed with the first call since recorded history already holds it
// afterwards.
func repl(ctx context.Context, c *chat.Chat, p *printer, prompt string, system chat.Transcript) error {
	ui := &input.UI{
		Writer: os.Stdout,
		Reader: os.Stdin,
	}

	first := true
	for {
		if prompt == "" {
			answer, err := ui.Ask("you", &input.Options{
				HideOrder: true,
			})
			if err != nil {
				if errors.Is(err, input.ErrInterrupted) {
					return nil
				}
				return err
			}
			prompt = strings.TrimSpace(answer)
		}

		switch prompt {
		case "", "/exit", "/quit":
			return nil
		case "/history":
			if err := p.PrintTranscript(c.History()); err != nil {
				return err
			}
			prompt = ""
			continue
		}

		var history chat.Transcript
		if first {
			history = system
			first = false
		}
		t := c.Chat(ctx, prompt, history)
		if err := p.PrintTranscript(afterLastUserMessage(t)); err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout)

		prompt = ""
	}
}
