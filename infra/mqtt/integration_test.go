package mqtt

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestIntegration verifies publishing and subscribing using a real Mosquitto broker.
func TestIntegration(t *testing.T) {
	if os.Getenv("DOCKER_AVAILABLE") != "true" && os.Getenv("DOCKER_AVAILABLE") != "1" {
		t.Skip("docker not available")
	}
	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		Cmd:          []string{"mosquitto", "-c", "/mosquitto-no-auth.conf"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start container: %v", err)
	}
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %v", err)
		}
	}()

	// give broker time to fully start
	time.Sleep(500 * time.Millisecond)

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "1883")
	if err != nil {
		t.Fatalf("failed to get mapped port: %v", err)
	}
	broker := fmt.Sprintf("tcp://%s:%s", host, port.Port())

	sub, err := NewClient(Config{Broker: broker, ClientID: "it-sub"}, nil)
	if err != nil {
		t.Fatalf("subscriber connect: %v", err)
	}
	defer sub.Disconnect()

	msgCh := make(chan string, 1)
	if err := sub.Subscribe("cars/ABC/state", func(_ string, payload []byte) {
		msgCh <- string(payload)
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	pub, err := NewClient(Config{Broker: broker, ClientID: "it-pub"}, nil)
	if err != nil {
		t.Fatalf("publisher connect: %v", err)
	}
	defer pub.Disconnect()

	if err := pub.Publish("cars/ABC/state", []byte("Charging"), false); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case got := <-msgCh:
		if got != "Charging" {
			t.Fatalf("unexpected payload %q", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("message not received")
	}
}
