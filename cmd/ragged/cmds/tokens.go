package cmds

import (
	"fmt"
	"io"
	"os"

	"github.com/go-go-golems/ragged/pkg/tokens"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func NewTokensCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "Token utilities",
	}

	var model, encoding string
	countCmd := &cobra.Command{
		Use:   "count [text]",
		Short: "Count the tokens of a text, read from stdin when no argument is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			if len(args) == 1 {
				text = args[0]
			} else {
				b, err := io.ReadAll(os.Stdin)
				if err != nil {
					return errors.Wrap(err, "could not read stdin")
				}
				text = string(b)
			}

			var (
				counter *tokens.Counter
				err     error
			)
			if encoding != "" {
				counter, err = tokens.NewCounterForEncoding(encoding)
			} else {
				counter, err = tokens.NewCounter(model)
			}
			if err != nil {
				return err
			}

			n, err := counter.Count(text)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d tokens (%s)\n", n, counter.Encoding())
			return err
		},
	}
	countCmd.Flags().StringVar(&model, "for-model", "gpt-4", "Model whose tokenizer to use")
	countCmd.Flags().StringVar(&encoding, "encoding", "", "Encoding to use instead of the model's (e.g. cl100k_base)")

	cmd.AddCommand(countCmd)
	return cmd
}
