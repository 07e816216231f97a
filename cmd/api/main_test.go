package main

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestRunServerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	done := make(chan error, 1)
	go func() { done <- runServer(ctx, srv) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runServer err: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestInstallLoggerFallsBackToNop(t *testing.T) {
	defer zap.ReplaceGlobals(zap.L())

	sugar := installLogger(func(...zap.Option) (*zap.Logger, error) {
		return nil, errors.New("no sink")
	})

	if sugar == nil {
		t.Fatal("expected a logger")
	}
	sugar.Infow("still usable", "key", "value")
	zap.S().Infow("global still usable")
}
