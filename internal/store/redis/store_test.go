package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/MrSnakeDoc/summon/internal/logger"
	"github.com/MrSnakeDoc/summon/internal/store"
)

// startRedisContainer starts a Redis container and returns its address.
// It skips the test if Docker is unavailable.
func startRedisContainer(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("Failed to start Redis container: %v", err)
		return ""
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Skipf("Failed to get host info: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Skipf("Failed to get mapped port: %v", err)
	}

	return fmt.Sprintf("%s:%s", host, port.Port())
}

func TestRedisBlob(t *testing.T) {
	addr := startRedisContainer(t)
	ctx := context.Background()

	s, err := Dial(ctx, DialOptions{Addr: addr, Timeout: 5 * time.Second}, logger.Nop())
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer s.Close()
	client := s.client
	snapshot := s.Blob(KeySnapshot, time.Hour)

	if _, err := snapshot.Read(ctx); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Read() on empty key error = %v, want ErrNotFound", err)
	}

	if err := snapshot.Write(ctx, []byte(`{"version":"1.0"}`)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	got, err := snapshot.Read(ctx)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != `{"version":"1.0"}` {
		t.Errorf("Read() = %s", got)
	}

	ttl, err := client.TTL(ctx, KeySnapshot).Result()
	if err != nil || ttl <= 0 || ttl > time.Hour {
		t.Errorf("TTL = %v, %v; want a positive TTL up to 1h", ttl, err)
	}

	usage := s.Blob(KeyUsage, 0)
	if err := usage.Write(ctx, []byte(`{"notepad":3}`)); err != nil {
		t.Fatalf("Write() usage error = %v", err)
	}

	if err := s.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if _, err := usage.Read(ctx); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Read() after Flush error = %v, want ErrNotFound", err)
	}
}
