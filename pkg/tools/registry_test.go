package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type weatherInput struct {
	City  string `json:"city" jsonschema:"description=Name of the city"`
	Units string `json:"units,omitempty" jsonschema:"enum=metric,enum=imperial"`
}

func newWeatherTool(t *testing.T) Tool {
	tool, err := NewTool("weather", "Get the weather for a city", func(ctx context.Context, in weatherInput) (string, error) {
		if in.City == "Atlantis" {
			return "", errors.New("city not found")
		}
		units := in.Units
		if units == "" {
			units = "metric"
		}
		return "sunny in " + in.City + " (" + units + ")", nil
	})
	require.NoError(t, err)
	return tool
}

func TestNewToolReflectsSchema(t *testing.T) {
	tool := newWeatherTool(t)

	raw, err := tool.SchemaJSON()
	require.NoError(t, err)

	var schema map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &schema))
	assert.Equal(t, "object", schema["type"])
	assert.NotContains(t, schema, "$schema")
	assert.NotContains(t, schema, "$id")
	assert.Equal(t, []interface{}{"city"}, schema["required"])

	props := schema["properties"].(map[string]interface{})
	city := props["city"].(map[string]interface{})
	assert.Equal(t, "string", city["type"])
	assert.Equal(t, "Name of the city", city["description"])
}

func TestNewToolRejectsBadInput(t *testing.T) {
	_, err := NewTool("", "x", func(ctx context.Context, in weatherInput) (string, error) { return "", nil })
	assert.Error(t, err)

	_, err = NewTool("bad", "x", func(ctx context.Context, in string) (string, error) { return "", nil })
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	reg, err := NewRegistry(newWeatherTool(t))
	require.NoError(t, err)

	assert.Error(t, reg.Register(newWeatherTool(t)))
	assert.Error(t, reg.Register(Tool{ID: "nohandler"}))
	assert.Equal(t, 1, reg.Len())

	_, ok := reg.Get("weather")
	assert.True(t, ok)
	_, ok = reg.Get("missing")
	assert.False(t, ok)
}

func TestRegistryCall(t *testing.T) {
	reg, err := NewRegistry(newWeatherTool(t))
	require.NoError(t, err)
	ctx := context.Background()

	out, err := reg.Call(ctx, "weather", `{"city":"Paris","units":"imperial"}`)
	require.NoError(t, err)
	assert.Equal(t, "sunny in Paris (imperial)", out)

	tests := []struct {
		name     string
		id       string
		args     string
		errType  string
		contains string
	}{
		{"missing tool", "missing", `{}`, "not_found", "no tool named missing"},
		{"missing required", "weather", `{}`, "validation", "city"},
		{"bad enum", "weather", `{"city":"Paris","units":"kelvin"}`, "validation", "units"},
		{"unknown property", "weather", `{"city":"Paris","extra":1}`, "validation", "extra"},
		{"invalid json", "weather", `{"city":`, "validation", ""},
		{"handler error", "weather", `{"city":"Atlantis"}`, "execution", "city not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.Call(ctx, tt.id, tt.args)
			require.Error(t, err)
			var te *ToolError
			require.True(t, errors.As(err, &te))
			assert.Equal(t, tt.errType, te.Type)
			assert.Contains(t, te.Message, tt.contains)
		})
	}
}

func TestRegistryExecute(t *testing.T) {
	reg, err := NewRegistry(newWeatherTool(t))
	require.NoError(t, err)
	ctx := context.Background()

	assert.Equal(t, "sunny in Oslo (metric)", reg.Execute(ctx, "weather", `{"city":"Oslo"}`))
	assert.Equal(t, "An error occurred: city not found", reg.Execute(ctx, "weather", `{"city":"Atlantis"}`))

	silent, err := NewTool("silent", "fails quietly", func(ctx context.Context, in struct{}) (string, error) {
		return "", &emptyErr{}
	})
	require.NoError(t, err)
	require.NoError(t, reg.Register(silent))
	assert.Equal(t, UnknownToolErrorText, reg.Execute(ctx, "silent", `{}`))
}

type emptyErr struct{}

func (*emptyErr) Error() string { return "" }
