package utils

import (
	"context"
	"encoding/json"
	"internhub/services"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookPostsEvent(t *testing.T) {
	var got WebhookEvent
	var header string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("X-Event-Id")
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	e := event(services.EventRefused)
	e.Comment = "dates overlap"
	e.ActorID = 2
	require.NoError(t, NewWebhookNotifier(srv.URL, time.Second).Notify(context.Background(), e))

	assert.Equal(t, header, got.ID)
	id, err := ulid.Parse(got.ID)
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(e.OccurredAt), id.Time())
	assert.Equal(t, services.EventRefused, got.Kind)
	assert.Equal(t, uint(42), got.InternshipID)
	assert.Equal(t, uint(2), got.ActorID)
	assert.Equal(t, "dates overlap", got.Comment)
	assert.Nil(t, got.InstructorID)
}

func TestWebhookClientErrorIsNotRetried(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, "bad payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewWebhookNotifier(srv.URL, time.Second).Notify(context.Background(), event(services.EventClaimed))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestWebhookRetriesServerErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, NewWebhookNotifier(srv.URL, time.Second).Notify(context.Background(), event(services.EventValidated)))
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestEventIDsAreOrdered(t *testing.T) {
	at := time.Now()
	a := newEventID(at)
	b := newEventID(at)
	assert.Less(t, a, b)
}
