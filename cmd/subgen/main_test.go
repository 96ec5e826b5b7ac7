package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"subgen/internal/api"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *apiClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return newAPIClient(server.URL, "")
}

func TestClientSurfacesAPIErrors(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(api.ErrorResponse{Error: "job abc is running"})
	})

	err := client.Delete(context.Background(), "abc")
	if err == nil || !strings.Contains(err.Error(), "job abc is running") {
		t.Fatalf("error = %v", err)
	}
}

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(api.DaemonStatus{Running: true})
	}))
	defer server.Close()

	client := newAPIClient(server.URL, "sekrit")
	if _, err := client.Status(context.Background()); err != nil {
		t.Fatalf("Status: %v", err)
	}
	if gotAuth != "Bearer sekrit" {
		t.Fatalf("auth header = %q", gotAuth)
	}
}

func TestJobsListRendersTable(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.JobListResponse{Jobs: []api.JobView{
			{
				ID:         "4f5e6d7c-0000-0000-0000-000000000000",
				Type:       "transcribe",
				Status:     "running",
				SourcePath: "/media/film.mkv",
				Progress:   api.JobProgress{Window: 2, Total: 5, Percent: 40},
			},
		}})
	})

	jobs, err := client.ListJobs(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("jobs = %+v", jobs)
	}

	out := renderTable(
		[]tableColumn{{Title: "ID"}, {Title: "Type"}, {Title: "Status"}, {Title: "Progress", Right: true}, {Title: "Source"}},
		[][]string{{shortID(jobs[0].ID), jobs[0].Type, jobs[0].Status, formatProgress(jobs[0].Progress), jobs[0].SourcePath}},
	)
	if !strings.Contains(out, "4f5e6d7c") || !strings.Contains(out, "2/5 (40%)") {
		t.Fatalf("unexpected table:\n%s", out)
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("4f5e6d7c-1111-2222"); got != "4f5e6d7c" {
		t.Fatalf("shortID = %q", got)
	}
	if got := shortID("plain"); got != "plain" {
		t.Fatalf("shortID passthrough = %q", got)
	}
}

func TestRootCommandHelp(t *testing.T) {
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"--help"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("help: %v", err)
	}
	for _, want := range []string{"jobs", "scan", "status", "media", "config"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("help missing %q:\n%s", want, buf.String())
		}
	}
}
