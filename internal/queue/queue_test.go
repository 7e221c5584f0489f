package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryPublishConsume(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	msgs, err := q.Consume(ctx)
	require.NoError(t, err)

	want := Message{Action: "login", UserID: "u1"}
	require.NoError(t, q.Publish(ctx, want))

	select {
	case got := <-msgs:
		assert.Equal(t, want, got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestInMemoryPublishCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	q := NewInMemory(0)
	err := q.Publish(ctx, Message{Action: "logout", UserID: "u1"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInMemoryConsumeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	q := NewInMemory(1)
	msgs, err := q.Consume(ctx)
	require.NoError(t, err)

	// Let the forwarder dequeue the message and block on the unread channel,
	// then cancel with nobody ever receiving.
	require.NoError(t, q.Publish(ctx, Message{Action: "login", UserID: "u1"}))
	time.Sleep(20 * time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)

	select {
	case msg, ok := <-msgs:
		assert.False(t, ok, "expected a closed channel, got %+v", msg)
	case <-time.After(time.Second):
		t.Fatal("consume channel never closed after cancel")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	msg, ok := deserialize(serialize(Message{Action: "login", UserID: "user-42"}))
	require.True(t, ok)
	assert.Equal(t, "login", msg.Action)
	assert.Equal(t, "user-42", msg.UserID)
}

func TestDeserializeRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "login", "|u1", "login|"} {
		_, ok := deserialize(raw)
		assert.False(t, ok, "raw=%q", raw)
	}
}
