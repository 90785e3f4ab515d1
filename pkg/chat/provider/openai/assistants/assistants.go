// Package assistants creates OpenAI assistants.
package assistants

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	go_openai "github.com/sashabaranov/go-openai"
)

type CreateRequest struct {
	Name         string `json:"name,omitempty" yaml:"name,omitempty"`
	Model        string `json:"model" yaml:"model"`
	Instructions string `json:"instructions,omitempty" yaml:"instructions,omitempty"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
}

type Assistant struct {
	ID           string `json:"id" yaml:"id"`
	CreatedAt    int64  `json:"created_at" yaml:"created_at"`
	Name         string `json:"name,omitempty" yaml:"name,omitempty"`
	Model        string `json:"model" yaml:"model"`
	Instructions string `json:"instructions,omitempty" yaml:"instructions,omitempty"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
}

type DAO struct {
	client *go_openai.Client
}

func NewDAO(client *go_openai.Client) *DAO {
	return &DAO{client: client}
}

func (d *DAO) CreateAssistant(ctx context.Context, req CreateRequest) (Assistant, error) {
	if req.Model == "" {
		return Assistant{}, errors.New("an assistant needs a model")
	}

	resp, err := d.client.CreateAssistant(ctx, go_openai.AssistantRequest{
		Model:        req.Model,
		Name:         optional(req.Name),
		Instructions: optional(req.Instructions),
		Description:  optional(req.Description),
	})
	if err != nil {
		return Assistant{}, errors.Wrap(err, "could not create assistant")
	}

	log.Debug().Str("id", resp.ID).Str("model", resp.Model).Msg("assistants: created")

	return Assistant{
		ID:           resp.ID,
		CreatedAt:    resp.CreatedAt,
		Name:         deref(resp.Name),
		Model:        resp.Model,
		Instructions: deref(resp.Instructions),
		Description:  deref(resp.Description),
	}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
