package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"erecord/internal/config"
	"erecord/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyBatchStarted(context.Background(), "SCCP49", 5); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsMessages(t *testing.T) {
	type captured struct {
		title    string
		message  string
		tags     string
		priority string
	}
	var got captured
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = captured{
			title:    r.Header.Get("Title"),
			message:  string(body),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)
	ctx := context.Background()

	if err := svc.NotifyBatchStarted(ctx, "SCCP49", 12); err != nil {
		t.Fatalf("NotifyBatchStarted: %v", err)
	}
	if got.title != "Erecord - Batch Started" || got.message != "Submitting 12 packages to SCCP49" {
		t.Fatalf("batch started = %+v", got)
	}

	if err := svc.NotifyBatchCompleted(ctx, 10, 1, 1, 90*time.Second); err != nil {
		t.Fatalf("NotifyBatchCompleted: %v", err)
	}
	if got.title != "Erecord - Batch Complete (with errors)" {
		t.Fatalf("batch completed title = %q", got.title)
	}
	if got.message != "Batch complete: 10 drafted, 1 invalid, 1 failed in 1m30s" {
		t.Fatalf("batch completed message = %q", got.message)
	}

	if err := svc.NotifyError(ctx, errors.New("boom"), "batch run"); err != nil {
		t.Fatalf("NotifyError: %v", err)
	}
	if got.priority != "high" || got.message != "Error with batch run: boom" {
		t.Fatalf("error notification = %+v", got)
	}
}

func TestNtfyServiceHonorsEventToggles(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Batch = false
	cfg.Notifications.Errors = false
	svc := notifications.NewService(&cfg)
	ctx := context.Background()

	_ = svc.NotifyBatchStarted(ctx, "SCCP49", 3)
	_ = svc.NotifyBatchCompleted(ctx, 3, 0, 0, time.Minute)
	_ = svc.NotifyError(ctx, errors.New("boom"), "run")
	if calls != 0 {
		t.Fatalf("calls = %d, disabled events must not send", calls)
	}

	// The explicit test notification always sends.
	if err := svc.TestNotification(ctx); err != nil {
		t.Fatalf("TestNotification: %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestNtfyServiceSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic over quota", http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)
	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error from non-2xx response")
	}
}
