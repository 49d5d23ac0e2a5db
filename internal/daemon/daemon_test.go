package daemon_test

import (
	"context"
	"errors"
	"testing"

	"oceaneye/internal/api"
	"oceaneye/internal/catalog"
	"oceaneye/internal/config"
	"oceaneye/internal/daemon"
	"oceaneye/internal/digest"
	"oceaneye/internal/identification"
	"oceaneye/internal/testsupport"
)

type closeCounter struct {
	closed int
}

func (c *closeCounter) Close() error {
	c.closed++
	return nil
}

func newServer(t *testing.T, cfg *config.Config) *api.Server {
	t.Helper()
	client, err := catalog.NewClient(cfg.Catalog.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	hasher, _ := digest.New(digest.SHA256)
	id, err := identification.New(hasher, catalog.NewResolver(client, nil))
	if err != nil {
		t.Fatalf("identification.New: %v", err)
	}
	srv, err := api.NewServer(cfg, id, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	closer := &closeCounter{}
	d, err := daemon.New(cfg, newServer(t, cfg), nil, closer)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	status := d.Status()
	if !status.Running || status.Address == "" {
		t.Fatalf("unexpected status: %#v", status)
	}
	if status.LockFilePath != cfg.LockPath() {
		t.Fatalf("unexpected lock path %q", status.LockFilePath)
	}

	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if d.Status().Running {
		t.Fatal("expected daemon stopped")
	}
	if closer.closed != 1 {
		t.Fatalf("expected closer called once, got %d", closer.closed)
	}
}

func TestDaemonSingleInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	first, err := daemon.New(cfg, newServer(t, cfg), nil)
	if err != nil {
		t.Fatalf("New first: %v", err)
	}
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start first: %v", err)
	}
	t.Cleanup(func() { _ = first.Close() })

	second, err := daemon.New(cfg, newServer(t, cfg), nil)
	if err != nil {
		t.Fatalf("New second: %v", err)
	}
	if err := second.Start(context.Background()); !errors.Is(err, daemon.ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestNewRequiresServer(t *testing.T) {
	if _, err := daemon.New(testsupport.NewConfig(t), nil, nil); err == nil {
		t.Fatal("expected error without server")
	}
}
