package summarizer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/summarize", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req SummarizeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, map[string]string{"user1": "hello", "user2": "hi there"}, req.Transcripts)
		require.Equal(t, map[string]string{"user1": "attendee", "user2": "moderator"}, req.Roles)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(SummarizeResponse{
			Summaries: map[string]string{
				"attendee":  "short summary A",
				"moderator": "short summary B",
			},
		})
	}))
	defer server.Close()

	client := New(server.URL)

	summaries, err := client.Summarize(context.Background(),
		map[string]string{"user1": "hello", "user2": "hi there"},
		map[string]string{"user1": "attendee", "user2": "moderator"})
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"attendee":  "short summary A",
		"moderator": "short summary B",
	}, summaries)
}

func TestSummarizeNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error": "model loading"}`))
	}))
	defer server.Close()

	client := New(server.URL)

	_, err := client.Summarize(context.Background(),
		map[string]string{"user1": "hello"},
		map[string]string{"user1": "attendee"})
	require.ErrorContains(t, err, "unexpected status code: 503")
}

func TestConversation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/conversation", r.URL.Path)

		var req ConversationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, []string{"hello", "hi there"}, req.Transcripts)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ConversationResponse{
			Conversation: "A: hello\nB: hi there",
		})
	}))
	defer server.Close()

	client := New(server.URL)

	conversation, err := client.Conversation(context.Background(), []string{"hello", "hi there"})
	require.NoError(t, err)
	require.Equal(t, "A: hello\nB: hi there", conversation)
}

func TestConversationUnreachableService(t *testing.T) {
	client := New("http://127.0.0.1:1")

	_, err := client.Conversation(context.Background(), []string{"hello"})
	require.Error(t, err)
}
