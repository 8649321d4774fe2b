package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"DeBrief/internal/domain/models"
	xhttp "DeBrief/pkg/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessage(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer srv.Close()

	c := New(xhttp.NewClient(), srv.URL, time.Second)
	err := c.SendMessage(context.Background(), models.TelegramCredentials{BotToken: "TOKEN", ChatID: "-100"}, strings.Repeat("a", 5000))
	require.NoError(t, err)
	assert.Equal(t, "-100", got["chat_id"])
	assert.Len(t, []rune(got["text"].(string)), maxMessageLen)
}

func TestSendMessage_Failures(t *testing.T) {
	c := New(xhttp.NewClient(), "http://127.0.0.1:1", time.Second)
	assert.ErrorIs(t, c.SendMessage(context.Background(), models.TelegramCredentials{}, "x"), ErrInvalidCredentials)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"ok":false,"description":"Forbidden: bot was blocked"}`))
	}))
	defer srv.Close()
	c = New(xhttp.NewClient(), srv.URL, time.Second)
	err := c.SendMessage(context.Background(), models.TelegramCredentials{BotToken: "SECRET", ChatID: "1"}, "x")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRET")
}

func TestGetUpdates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botT/getUpdates", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("offset"))
		assert.Equal(t, "25", r.URL.Query().Get("timeout"))
		_, _ = w.Write([]byte(`{"ok":true,"result":[
			{"update_id":42,"message":{"text":"/list","from":{"username":"kim","id":7},"chat":{"id":-100123}}},
			{"update_id":43}
		]}`))
	}))
	defer srv.Close()

	c := New(xhttp.NewClient(), srv.URL, time.Second)
	msgs, err := c.GetUpdates(context.Background(), "T", 42, 25*time.Second)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, models.ChatMessage{UpdateID: 42, ChatID: "-100123", From: "kim", Text: "/list"}, msgs[0])
	assert.Equal(t, int64(43), msgs[1].UpdateID)
	assert.Empty(t, msgs[1].Text)
}

func TestGetMe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"result":{"username":"debrief_bot"}}`))
	}))
	defer srv.Close()
	name, err := New(xhttp.NewClient(), srv.URL, 0).GetMe(context.Background(), "T")
	require.NoError(t, err)
	assert.Equal(t, "debrief_bot", name)
}
