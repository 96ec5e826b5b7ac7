package notifications_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"subgen/internal/notifications"
	"subgen/internal/testsupport"
)

func TestNewServiceWithoutTopicIsNoop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = ""

	svc := notifications.NewService(cfg)
	if err := svc.NotifyJobStarted(context.Background(), "film"); err != nil {
		t.Fatalf("noop service returned error: %v", err)
	}
}

func TestNotifyJobCompletedSendsHeaders(t *testing.T) {
	var gotTitle, gotTags string
	var body atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.Header.Get("Title")
		gotTags = r.Header.Get("Tags")
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		body.Store(string(buf))
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(cfg)
	if err := svc.NotifyJobCompleted(context.Background(), "film.mkv", "/media/film.gen_en.srt"); err != nil {
		t.Fatalf("NotifyJobCompleted: %v", err)
	}
	if gotTitle != "Subgen - Job Complete" {
		t.Fatalf("title header = %q", gotTitle)
	}
	if gotTags == "" {
		t.Fatal("expected tags header")
	}
	if stored, _ := body.Load().(string); stored == "" {
		t.Fatal("expected message body")
	}
}

func TestNotifyJobFailedRespectsToggle(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Errors = false

	svc := notifications.NewService(cfg)
	if err := svc.NotifyJobFailed(context.Background(), "film", errors.New("boom")); err != nil {
		t.Fatalf("NotifyJobFailed: %v", err)
	}
	if calls.Load() != 0 {
		t.Fatal("disabled error notifications should not send")
	}
}

func TestSendSurfacesServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(cfg)
	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
