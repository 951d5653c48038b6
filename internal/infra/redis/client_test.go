package redis

import (
	"context"
	"strconv"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"go.uber.org/zap/zaptest"

	"github.com/shakibbs/Event-Backend/internal/infra/config"
)

func settingsFor(t *testing.T, server *miniredis.Miniredis) config.RedisSettings {
	t.Helper()
	port, err := strconv.Atoi(server.Port())
	if err != nil {
		t.Fatalf("parse miniredis port: %v", err)
	}
	return config.RedisSettings{Host: server.Host(), Port: port, RegistryPrefix: "ems:tokens:"}
}

func TestClientHealthCheckTracksServer(t *testing.T) {
	server := miniredis.RunT(t)

	client, err := NewClient(settingsFor(t, server), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	defer client.Close()

	if client.Name() != "redis" {
		t.Fatalf("unexpected readiness name %q", client.Name())
	}
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}

	server.Close()
	if err := client.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected HealthCheck to fail once the server is gone")
	}
}

func TestNewClientFailsWhenUnreachable(t *testing.T) {
	server := miniredis.RunT(t)
	cfg := settingsFor(t, server)
	server.Close()

	_, err := NewClient(cfg, nil)
	if err == nil {
		t.Fatal("expected NewClient to fail")
	}
	if !strings.Contains(err.Error(), "unreachable") {
		t.Fatalf("unexpected error %v", err)
	}
}
