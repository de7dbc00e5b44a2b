package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"overcooked-pos/pos-svc/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestRelay_ForwardsAcrossInstances(t *testing.T) {
	client, mr := newRedis(t)

	hubA, _ := startHub(t)
	hubB, urlB := startHub(t)
	relayA := NewRelay(client, hubA, nil)
	relayB := NewRelay(client, hubB, nil)

	terminal := dial(t, urlB, "kitchen-a")
	require.Eventually(t, func() bool { return hubB.Connections("tenant-a") == 1 }, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relayB.Run(ctx) }()
	require.Eventually(t, func() bool { return mr.PubSubNumPat() > 0 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, relayA.Publish(context.Background(), "tenant-a", domain.Event{
		TenantID: "tenant-a",
		Name:     domain.EventWaiterNotification,
	}))
	assert.Equal(t, domain.EventWaiterNotification, readEvent(t, terminal).Name)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop")
	}
}

func TestRelay_IgnoresOwnEchoes(t *testing.T) {
	client, _ := newRedis(t)
	hub, url := startHub(t)
	relay := NewRelay(client, hub, nil)
	terminal := dial(t, url, "waiter-a")
	require.Eventually(t, func() bool { return hub.Connections("tenant-a") == 1 }, 2*time.Second, 10*time.Millisecond)

	echoed, err := json.Marshal(domain.Event{Name: domain.EventTableFreed})
	require.NoError(t, err)
	relayed, err := json.Marshal(domain.Event{Name: domain.EventWaiterNotification})
	require.NoError(t, err)
	own, err := json.Marshal(envelope{Origin: relay.origin, Event: echoed})
	require.NoError(t, err)
	foreign, err := json.Marshal(envelope{Origin: "another-instance", Event: relayed})
	require.NoError(t, err)

	relay.forward(&redis.Message{Channel: channelFor("tenant-a"), Payload: string(own)})
	relay.forward(&redis.Message{Channel: channelFor("tenant-a"), Payload: "not json"})
	relay.forward(&redis.Message{Channel: channelPrefix, Payload: string(foreign)})
	relay.forward(&redis.Message{Channel: channelFor("tenant-a"), Payload: string(foreign)})

	assert.Equal(t, domain.EventWaiterNotification, readEvent(t, terminal).Name, "the echo was never queued")
	assertSilent(t, terminal)
}
