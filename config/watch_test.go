package config

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestWatcherStopsOnCancel(t *testing.T) {
	path := writeTempConfig(t, validConfig)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := Watcher{Path: path}
	if err := w.Start(ctx, nil); err == nil {
		t.Fatalf("expected context cancellation")
	}
}

func TestWatcherTriggersOnChange(t *testing.T) {
	path := writeTempConfig(t, validConfig)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := make(chan AppConfig, 1)
	w := Watcher{Path: path, Cooldown: 10 * time.Millisecond}
	go func() {
		_ = w.Start(ctx, func(cfg AppConfig) {
			select {
			case ch <- cfg:
			default:
			}
		})
	}()

	// give the watcher time to register before writing
	time.Sleep(100 * time.Millisecond)
	updated := []byte("env: prod\ngateway:\n  baseURL: https://api.test\n")
	if err := os.WriteFile(path, updated, 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case cfg := <-ch:
		if cfg.Env != "prod" {
			t.Fatalf("expected reloaded env, got %+v", cfg)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("expected update callback")
	}
}

func TestWatcherSkipsInvalidConfig(t *testing.T) {
	path := writeTempConfig(t, validConfig)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := make(chan AppConfig, 1)
	w := Watcher{Path: path, Cooldown: 10 * time.Millisecond}
	go func() {
		_ = w.Start(ctx, func(cfg AppConfig) {
			select {
			case ch <- cfg:
			default:
			}
		})
	}()

	time.Sleep(100 * time.Millisecond)
	// missing env: must not reach the callback
	if err := os.WriteFile(path, []byte("gateway:\n  baseURL: https://api.test\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case cfg := <-ch:
		t.Fatalf("invalid config should be skipped, got %+v", cfg)
	case <-time.After(500 * time.Millisecond):
	}
}
