package events

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/go-go-golems/ragged/pkg/chat"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEventFromJSON(t *testing.T) {
	_, err := NewEventFromJSON([]byte(`{"id":`))
	require.Error(t, err)

	_, err = NewEventFromJSON([]byte(`{"prompt":"x"}`))
	require.Error(t, err)

	ev, err := NewEventFromJSON([]byte(`{"type":"chat-final","prompt":"hi","transcript":[{"type":"user","text":"hi"}]}`))
	require.NoError(t, err)
	assert.Equal(t, chat.EventTypeFinal, ev.Type)
	assert.Equal(t, chat.Transcript{chat.NewUserMessage("hi")}, ev.Transcript)
}

func TestRouterDeliversChatEvents(t *testing.T) {
	router, err := NewRouter()
	require.NoError(t, err)

	received := make(chan chat.Event, 4)
	router.AddHandler("collect", "chat", func(ev chat.Event) error {
		received <- ev
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = router.Run(ctx)
	}()
	<-router.Running()
	defer func() {
		_ = router.Close()
	}()

	c := chat.New(chat.AdapterFunc(func(ctx context.Context, req chat.Request) (chat.Response, error) {
		return chat.Response{History: chat.Transcript{chat.NewBotMessage("pong")}}, nil
	}), chat.WithEventSink(router.Sink("chat")))

	c.Chat(ctx, "ping", nil)

	var got []chat.Event
	for len(got) < 2 {
		select {
		case ev := <-received:
			got = append(got, ev)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for chat events")
		}
	}

	assert.Equal(t, chat.EventTypeStart, got[0].Type)
	assert.Equal(t, chat.EventTypeFinal, got[1].Type)
	assert.NotEqual(t, uuid.Nil, got[1].ID)
	assert.Equal(t, chat.Transcript{chat.NewUserMessage("ping"), chat.NewBotMessage("pong")}, got[1].Transcript)
}

func TestNullSink(t *testing.T) {
	assert.NoError(t, NewNullSink().PublishEvent(chat.Event{Type: chat.EventTypeStart}))
}

func TestPrinterFunc(t *testing.T) {
	var buf bytes.Buffer
	printEvent := PrinterFunc("ragged", &buf)
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	require.NoError(t, printEvent(chat.Event{ID: id, Type: chat.EventTypeStart, Recording: true, Transcript: chat.Transcript{chat.NewUserMessage("hi")}}))
	assert.Contains(t, buf.String(), "ragged [chat-start] 6ba7b810-9dad-11d1-80b4-00c04fd430c8 (recording on, 1 messages)")

	buf.Reset()
	require.NoError(t, printEvent(chat.Event{ID: id, Type: chat.EventTypeFinal, Transcript: chat.Transcript{chat.NewBotMessage("pong")}}))
	assert.Contains(t, buf.String(), "[chat-final]")
	assert.Contains(t, buf.String(), "text: pong")

	buf.Reset()
	require.NoError(t, printEvent(chat.Event{ID: id, Type: chat.EventTypeError, Error: "An unknown error occurred"}))
	assert.Equal(t, "ragged [chat-error] 6ba7b810-9dad-11d1-80b4-00c04fd430c8: An unknown error occurred\n", buf.String())
}
