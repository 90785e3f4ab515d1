package cmds

import (
	"context"
	"os"

	"github.com/go-go-golems/ragged/pkg/chat"
	"github.com/go-go-golems/ragged/pkg/chat/factory"
	"github.com/go-go-golems/ragged/pkg/settings"
	"github.com/go-go-golems/ragged/pkg/tools/fstools"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type toolsFlags struct {
	dir           string
	maxIterations int
	output        string
	render        bool
	printEvents   bool
}

func NewToolsCommand() *cobra.Command {
	flags := &toolsFlags{}
	cmd := &cobra.Command{
		Use:   "tools [prompt]",
		Short: "Let an OpenAI model answer using the ls, pwd and cat tools",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTools(cmd.Context(), flags, args[0])
		},
	}

	cmd.Flags().StringVar(&flags.dir, "dir", ".", "Directory the file tools operate in")
	cmd.Flags().IntVar(&flags.maxIterations, "max-iterations", 0, "Maximum number of tool rounds (default from config)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "text", "Output format (text, yaml, json)")
	cmd.Flags().BoolVar(&flags.render, "render", true, "Render markdown answers when writing to a terminal")
	cmd.Flags().BoolVar(&flags.printEvents, "print-events", false, "Print chat events to stderr")

	return cmd
}

func runTools(ctx context.Context, flags *toolsFlags, prompt string) error {
	format, err := parseOutputFormat(flags.output)
	if err != nil {
		return err
	}
	s, err := loadSettings()
	if err != nil {
		return err
	}
	if s.Chat.ApiType != settings.ApiTypeOpenAI {
		return errors.Errorf("tool calling needs the openai provider, not %s", s.Chat.ApiType)
	}
	if flags.maxIterations > 0 {
		s.Chat.MaxIterations = flags.maxIterations
	}

	registry, err := fstools.NewRegistry(flags.dir)
	if err != nil {
		return err
	}

	return withEventRouter(ctx, flags.printEvents, func(ctx context.Context, sink chat.EventSink) error {
		c, err := factory.NewChat(ctx, s,
			[]factory.AdapterOption{factory.WithTools(registry)},
			chat.WithEventSink(sink),
			chat.WithRecording(true),
		)
		if err != nil {
			return err
		}

		t := c.Chat(ctx, prompt, nil)
		if err := newPrinter(os.Stdout, format, flags.render).PrintTranscript(afterLastUserMessage(t)); err != nil {
			return err
		}
		if t.Failed() {
			return errors.New("the provider call failed")
		}
		return nil
	})
}
