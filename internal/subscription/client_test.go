package subscription

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSubscriber(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.CreateSubscriber(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "/subscribers/", gotPath)
	assert.Equal(t, "abc123", gotBody["subscriber_id"])
}

func TestCreateSubscriberNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	err := NewClient(server.URL).CreateSubscriber(context.Background(), "abc123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestCreateSubscriberConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	err := NewClient(server.URL).CreateSubscriber(context.Background(), "abc123")
	require.Error(t, err)
}
