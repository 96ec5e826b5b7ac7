package stt_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"subgen/internal/services"
	"subgen/internal/stt"
	"subgen/internal/testsupport"
)

func newClient(t *testing.T, endpoint string) *stt.Client {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithSTTEndpoint(endpoint))
	cfg.STT.BackoffMillis = 1
	return stt.NewClient(cfg, nil)
}

func TestTranscribeSuccess(t *testing.T) {
	var gotSampleRate, gotLang, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSampleRate = r.Header.Get("X-Sample-Rate")
		gotLang = r.Header.Get("X-Lang")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"hello there","language":"en","segments":[{"start":1.0,"end":2.5,"text":"hello there"}]}`))
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithSTTEndpoint(server.URL))
	cfg.STT.APIKey = "secret"
	client := stt.NewClient(cfg, nil)

	result, err := client.Transcribe(context.Background(), []byte{0, 0, 0, 0}, "en")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if result.Language != "en" || len(result.Segments) != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Segments[0].End != 2.5 {
		t.Fatalf("unexpected segment: %+v", result.Segments[0])
	}
	if gotSampleRate != "16000" {
		t.Fatalf("sample rate header = %q", gotSampleRate)
	}
	if gotLang != "en" {
		t.Fatalf("lang header = %q", gotLang)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("auth header = %q", gotAuth)
	}
}

func TestTranscribeRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"text":"ok","language":"en","segments":[]}`))
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	result, err := client.Transcribe(context.Background(), nil, "")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if result.Text != "ok" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestTranscribeExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	_, err := client.Transcribe(context.Background(), nil, "")
	if !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestTranscribeClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	_, err := client.Transcribe(context.Background(), nil, "")
	if !errors.Is(err, services.ErrBadResponse) {
		t.Fatalf("expected ErrBadResponse, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("4xx should not retry, got %d attempts", calls.Load())
	}
}

func TestTranscribeMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	_, err := client.Transcribe(context.Background(), nil, "")
	if !errors.Is(err, services.ErrBadResponse) {
		t.Fatalf("expected ErrBadResponse, got %v", err)
	}
}

func TestTranscribeRejectsInvalidSegmentBounds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":"x","language":"en","segments":[{"start":5,"end":2,"text":"x"}]}`))
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	_, err := client.Transcribe(context.Background(), nil, "")
	if !errors.Is(err, services.ErrBadResponse) {
		t.Fatalf("expected ErrBadResponse, got %v", err)
	}
}

func TestTranscribeCanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := newClient(t, server.URL)
	_, err := client.Transcribe(ctx, nil, "")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
