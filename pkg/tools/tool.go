package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/go-go-golems/ragged/pkg/support/jsonx"
	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
)

// Handler runs a tool with the raw JSON arguments produced by the model and
// returns the text handed back to the model.
type Handler func(ctx context.Context, args string) (string, error)

// Tool is a function the model may call.
type Tool struct {
	ID          string             `json:"id"`
	Description string             `json:"description"`
	Props       *jsonschema.Schema `json:"props"`
	Handler     Handler            `json:"-"`
}

// NewTool builds a tool whose arguments are decoded into T. The JSON schema
// announced to the model is reflected from T.
func NewTool[T any](id, description string, fn func(ctx context.Context, input T) (string, error)) (Tool, error) {
	if id == "" {
		return Tool{}, errors.New("tool id cannot be empty")
	}
	if fn == nil {
		return Tool{}, errors.Errorf("tool %s has no handler", id)
	}

	var zero T
	inputType := reflect.TypeOf(zero)
	if inputType == nil || inputType.Kind() != reflect.Struct {
		return Tool{}, errors.Errorf("tool %s: input must be a struct, got %v", id, inputType)
	}

	reflector := jsonschema.Reflector{
		DoNotReference: true,
		Anonymous:      true,
	}
	schema := reflector.Reflect(zero)
	schema.Version = ""
	if schema.Type == "" {
		schema.Type = "object"
	}

	handler := func(ctx context.Context, args string) (string, error) {
		var input T
		if args != "" {
			if err := jsonx.Parse(args, &input); err != nil {
				return "", err
			}
		}
		return fn(ctx, input)
	}

	return Tool{
		ID:          id,
		Description: description,
		Props:       schema,
		Handler:     handler,
	}, nil
}

// SchemaJSON returns the tool's parameter schema, as sent to providers.
func (t Tool) SchemaJSON() (json.RawMessage, error) {
	if t.Props == nil {
		return json.RawMessage(`{"type":"object","properties":{}}`), nil
	}
	b, err := json.Marshal(t.Props)
	if err != nil {
		return nil, errors.Wrapf(err, "could not marshal schema of tool %s", t.ID)
	}
	// providers and gojsonschema reject unknown meta-schema and id keywords
	m := map[string]interface{}{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, errors.Wrapf(err, "could not read schema of tool %s", t.ID)
	}
	delete(m, "$schema")
	delete(m, "$id")
	return json.Marshal(m)
}

// ToolError is returned by Registry.Call when a tool could not produce a result.
type ToolError struct {
	ToolID  string `json:"tool_id"`
	Type    string `json:"type"` // "validation", "execution", "not_found"
	Message string `json:"message"`
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool error [%s] %s: %s", e.Type, e.ToolID, e.Message)
}
