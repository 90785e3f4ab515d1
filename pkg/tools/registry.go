package tools

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/xeipuuv/gojsonschema"
)

// UnknownToolErrorText is handed to the model when a tool fails without a message.
const UnknownToolErrorText = "An unknown error occurred."

// Registry holds the tools offered to a model, in registration order.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	tools   map[string]Tool
	schemas map[string]*gojsonschema.Schema
}

func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{
		tools:   map[string]Tool{},
		schemas: map[string]*gojsonschema.Schema{},
	}
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Register(t Tool) error {
	if t.ID == "" {
		return errors.New("tool id cannot be empty")
	}
	if t.Handler == nil {
		return errors.Errorf("tool %s has no handler", t.ID)
	}

	raw, err := t.SchemaJSON()
	if err != nil {
		return err
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return errors.Wrapf(err, "invalid schema for tool %s", t.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[t.ID]; exists {
		return errors.Errorf("tool %s is already registered", t.ID)
	}
	r.order = append(r.order, t.ID)
	r.tools[t.ID] = t
	r.schemas[t.ID] = schema
	return nil
}

func (r *Registry) Get(id string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[id]
	return t, ok
}

// List returns the registered tools in registration order.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ret := make([]Tool, 0, len(r.order))
	for _, id := range r.order {
		ret = append(ret, r.tools[id])
	}
	return ret
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Call validates args against the tool's schema and runs it.
func (r *Registry) Call(ctx context.Context, id string, args string) (string, error) {
	r.mu.RLock()
	t, ok := r.tools[id]
	schema := r.schemas[id]
	r.mu.RUnlock()

	if !ok {
		return "", &ToolError{ToolID: id, Type: "not_found", Message: "no tool named " + id}
	}

	if strings.TrimSpace(args) == "" {
		args = "{}"
	}
	result, err := schema.Validate(gojsonschema.NewStringLoader(args))
	if err != nil {
		return "", &ToolError{ToolID: id, Type: "validation", Message: err.Error()}
	}
	if !result.Valid() {
		descs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			descs = append(descs, desc.String())
		}
		return "", &ToolError{ToolID: id, Type: "validation", Message: strings.Join(descs, "; ")}
	}

	start := time.Now()
	out, err := t.Handler(ctx, args)
	log.Debug().
		Str("tool", id).
		Dur("duration", time.Since(start)).
		Bool("failed", err != nil).
		Msg("tools: handler returned")
	if err != nil {
		return "", &ToolError{ToolID: id, Type: "execution", Message: err.Error()}
	}
	return out, nil
}

// Execute runs a tool and always returns text for the model: failures are
// reported as "An error occurred: ..." so the model can react to them.
func (r *Registry) Execute(ctx context.Context, id string, args string) string {
	out, err := r.Call(ctx, id, args)
	if err == nil {
		return out
	}

	log.Warn().Err(err).Str("tool", id).Msg("tool call failed")
	msg := err.Error()
	var te *ToolError
	if errors.As(err, &te) {
		msg = te.Message
	}
	if msg == "" {
		return UnknownToolErrorText
	}
	return "An error occurred: " + msg
}
