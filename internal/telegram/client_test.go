package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigured(t *testing.T) {
	assert.True(t, NewClient("tok", "42").Configured())
	assert.False(t, NewClient("", "42").Configured())
	assert.False(t, NewClient("tok", "").Configured())
	assert.False(t, NewClient("", "").Configured())
}

func TestSendMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottok/sendMessage", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "42", payload["chat_id"])
		assert.Equal(t, "panel text", payload["text"])
		assert.Equal(t, "HTML", payload["parse_mode"])

		w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	defer server.Close()

	client := NewClient("tok", "42", WithBaseURL(server.URL))
	assert.True(t, client.SendMessage(context.Background(), "panel text"))
}

func TestSendMessage_UnconfiguredSkipsNetwork(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	client := NewClient("", "", WithBaseURL(server.URL))
	assert.False(t, client.SendMessage(context.Background(), "panel text"))
	assert.Zero(t, calls)
}

func TestSendMessage_APIRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"error_code":403,"description":"bot was blocked by the user"}`))
	}))
	defer server.Close()

	client := NewClient("tok", "42", WithBaseURL(server.URL))
	assert.False(t, client.SendMessage(context.Background(), "panel text"))
}

func TestSendMessage_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient("tok", "42", WithBaseURL(server.URL))
	assert.False(t, client.SendMessage(context.Background(), "panel text"))
}

func TestGetUpdates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottok/getUpdates", r.URL.Path)
		assert.Equal(t, "20", r.URL.Query().Get("timeout"))
		assert.Equal(t, "101", r.URL.Query().Get("offset"))

		w.Write([]byte(`{"ok":true,"result":[{"update_id":101,"message":{"message_id":7,"chat":{"id":42},"text":"/status"}}]}`))
	}))
	defer server.Close()

	client := NewClient("tok", "42", WithBaseURL(server.URL))
	updates, err := client.GetUpdates(context.Background(), 101, 20)
	require.NoError(t, err)
	require.Len(t, updates, 1)

	assert.Equal(t, int64(101), updates[0].UpdateID)
	require.NotNil(t, updates[0].Message)
	assert.Equal(t, int64(42), updates[0].Message.Chat.ID)
	assert.Equal(t, "/status", updates[0].Message.Text)
	assert.Nil(t, updates[0].EditedMessage)
}

func TestGetUpdates_OmitsZeroOffset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("offset"))
		w.Write([]byte(`{"ok":true,"result":[]}`))
	}))
	defer server.Close()

	client := NewClient("tok", "42", WithBaseURL(server.URL))
	updates, err := client.GetUpdates(context.Background(), 0, 20)
	require.NoError(t, err)
	assert.Empty(t, updates)
}

func TestGetUpdates_NotOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"error_code":401,"description":"Unauthorized"}`))
	}))
	defer server.Close()

	client := NewClient("tok", "42", WithBaseURL(server.URL))
	_, err := client.GetUpdates(context.Background(), 0, 20)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Code)
}
