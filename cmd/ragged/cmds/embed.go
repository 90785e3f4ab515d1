package cmds

import (
	"fmt"

	"github.com/go-go-golems/ragged/pkg/embed"
	"github.com/go-go-golems/ragged/pkg/embed/factory"
	"github.com/spf13/cobra"
)

func NewEmbedCommand() *cobra.Command {
	var model string
	cmd := &cobra.Command{
		Use:   "embed <text-a> <text-b>",
		Short: "Embed two texts and print their cosine similarity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}

			var opts []factory.ProviderOption
			if model != "" {
				opts = append(opts, factory.WithModel(model))
			}
			adapter, err := factory.NewFactory(s).NewAdapter(opts...)
			if err != nil {
				return err
			}

			embeddings, err := embed.EmbedBatch(cmd.Context(), adapter, args, s.Embeddings.Concurrency)
			if err != nil {
				return err
			}

			similarity, err := embed.CosineSimilarity(embeddings[0], embeddings[1])
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d dimensions)\nsimilarity: %.4f\n",
				embeddings[0].Provider, embeddings[0].Model, len(embeddings[0].Vector), similarity)
			return err
		},
	}

	cmd.Flags().StringVar(&model, "embeddings-model", "", "Embeddings model (default from config)")

	return cmd
}
