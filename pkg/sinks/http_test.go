package sinks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPSinkSuccess(t *testing.T) {
	var received bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("X-Test"); got != "1" {
			t.Fatalf("missing header, got %s", got)
		}
		received = true
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink, err := newHTTPSink(context.Background(), SinkConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPSinkConfig{
			URL:            srv.URL,
			Method:         http.MethodPost,
			Headers:        map[string]string{"X-Test": "1"},
			TimeoutSeconds: 2,
		},
	}, nil)
	if err != nil {
		t.Fatalf("newHTTPSink: %v", err)
	}

	if err := sink.Publish(context.Background(), Event{CategoryName: "chat"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !received {
		t.Fatalf("server did not receive request")
	}
}

func TestHTTPSinkErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer srv.Close()

	sink, err := newHTTPSink(context.Background(), SinkConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPSinkConfig{
			URL:            srv.URL,
			Method:         http.MethodPost,
			TimeoutSeconds: 1,
		},
	}, nil)
	if err != nil {
		t.Fatalf("newHTTPSink: %v", err)
	}

	if err := sink.Publish(context.Background(), Event{}); err == nil {
		t.Fatalf("expected error on non-2xx response")
	}
}
