//go:build integration

package mqtt

import (
	"context"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/emotionalsongs-core/internal/catalog"
)

// Integration tests require a running MQTT broker at 127.0.0.1:1883.
//
// Run with:
//   go test -tags=integration -v ./internal/infrastructure/mqtt/...

func TestIntegration_EventRoundtrip(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.ClientID = "emotionalsongs-int-publisher"

	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	// Independent subscriber so the test observes what the broker delivers.
	subOpts := buildClientOptions(cfg)
	subOpts.SetClientID("emotionalsongs-int-subscriber")
	sub := pahomqtt.NewClient(subOpts)
	if token := sub.Connect(); !token.WaitTimeout(5*time.Second) || token.Error() != nil {
		t.Fatalf("subscriber connect: %v", token.Error())
	}
	defer sub.Disconnect(100)

	received := make(chan string, 1)
	token := sub.Subscribe(client.Topics().AllEvents(), 1, func(_ pahomqtt.Client, msg pahomqtt.Message) {
		received <- msg.Topic()
	})
	if !token.WaitTimeout(5*time.Second) || token.Error() != nil {
		t.Fatalf("subscribe: %v", token.Error())
	}

	p := NewEventPublisher(client, 1)
	if err := p.Publish(context.Background(), catalog.Event{Kind: catalog.EventResidenceCreated, EntityID: "R1"}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case topic := <-received:
		if want := client.Topics().Event(catalog.EventResidenceCreated); topic != want {
			t.Errorf("topic = %q, want %q", topic, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("event not delivered")
	}
}
