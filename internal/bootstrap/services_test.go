package bootstrap

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/loomhq/loom-admin/config"
)

func TestNewHTTPServerDefaultsAddr(t *testing.T) {
	server := NewHTTPServer(HTTPServerOptions{Logger: testLogger()})
	if server.Addr != ":8080" {
		t.Errorf("expected default addr :8080, got %q", server.Addr)
	}

	cfg := &config.AppConfig{HTTP: config.HTTPConfig{Addr: "127.0.0.1:9999"}}
	server = NewHTTPServer(HTTPServerOptions{Config: cfg, Logger: testLogger()})
	if server.Addr != "127.0.0.1:9999" {
		t.Errorf("expected configured addr, got %q", server.Addr)
	}
}

func TestRunHTTPServerStopsOnContextCancel(t *testing.T) {
	cfg := &config.AppConfig{HTTP: config.HTTPConfig{Addr: "127.0.0.1:0"}}
	server := NewHTTPServer(HTTPServerOptions{Config: cfg, Logger: testLogger()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- RunHTTPServer(ctx, server, testLogger())
	}()

	// Give the listener a moment to come up, then ask for shutdown.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil && err != http.ErrServerClosed {
			t.Fatalf("RunHTTPServer() error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down after context cancel")
	}
}
