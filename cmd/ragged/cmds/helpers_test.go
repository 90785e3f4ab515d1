package cmds

import (
	"bytes"
	"testing"

	"github.com/go-go-golems/ragged/pkg/chat"
	"github.com/go-go-golems/ragged/pkg/settings"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseOutputFormat(t *testing.T) {
	for _, s := range []string{"text", "YAML", "json"} {
		_, err := parseOutputFormat(s)
		assert.NoError(t, err, s)
	}
	_, err := parseOutputFormat("xml")
	assert.Error(t, err)
}

func TestAfterLastUserMessage(t *testing.T) {
	tr := chat.Transcript{
		chat.NewUserMessage("a"),
		chat.NewBotMessage("b"),
		chat.NewUserMessage("c"),
		chat.NewBotMessage("d"),
		chat.NewBotMessage("e"),
	}
	assert.Equal(t, chat.Transcript{chat.NewBotMessage("d"), chat.NewBotMessage("e")}, afterLastUserMessage(tr))

	noUser := chat.Transcript{chat.NewSystemMessage("s")}
	assert.Equal(t, noUser, afterLastUserMessage(noUser))
}

func TestPrinter(t *testing.T) {
	tr := chat.Transcript{chat.NewUserMessage("hi"), chat.NewErrorMessage("An unknown error occurred")}

	var buf bytes.Buffer
	require.NoError(t, newPrinter(&buf, outputText, false).PrintTranscript(tr))
	assert.Equal(t, "[user]: hi\n[error]: An unknown error occurred\n", buf.String())

	buf.Reset()
	require.NoError(t, newPrinter(&buf, outputYAML, false).PrintTranscript(tr))
	var decoded chat.Transcript
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, tr, decoded)

	buf.Reset()
	require.NoError(t, newPrinter(&buf, outputJSON, false).PrintTranscript(tr))
	assert.Contains(t, buf.String(), `"type": "error"`)
}

func TestLoadSettingsOverrides(t *testing.T) {
	viper.Set("api-type", "ollama")
	viper.Set("model", "mistral")
	defer func() {
		viper.Set("api-type", "")
		viper.Set("model", "")
	}()

	s, err := loadSettings()
	require.NoError(t, err)
	assert.Equal(t, settings.ApiTypeOllama, s.Chat.ApiType)
	assert.Equal(t, "mistral", s.Chat.Model)

	viper.Set("api-type", "nope")
	_, err = loadSettings()
	require.Error(t, err)
}
