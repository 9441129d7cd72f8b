package publishers

import (
	"context"
	"io"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPubSubPublisherPublishes(t *testing.T) {
	// Use the in-memory Pub/Sub emulator.
	server := pstest.NewServer()
	defer server.Close()
	t.Setenv("PUBSUB_EMULATOR_HOST", server.Addr)

	ctx := context.Background()
	client, err := pubsub.NewClient(ctx, "test-project")
	require.NoError(t, err)
	defer client.Close()
	_, err = client.CreateTopic(ctx, "stats")
	require.NoError(t, err)

	pub, err := newPubSubPublisher(ctx, PublisherConfig{
		ID:     "ps",
		Type:   TypePubSub,
		PubSub: &PubSubPublisherConfig{ProjectID: "test-project", Topic: "stats"},
	}, nil)
	require.NoError(t, err)
	defer pub.(io.Closer).Close()

	require.NoError(t, pub.Publish(ctx, sampleEvent()))

	msgs := server.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "724663360934772797", msgs[0].Attributes["bot_id"])
	assert.Equal(t, "1", msgs[0].Attributes["api_version"])
	assert.Equal(t, "2514", msgs[0].Attributes["servers"])
	assert.Equal(t, "3", msgs[0].Attributes["shards"])
	assert.Contains(t, string(msgs[0].Data), `"users":338250`)
}
