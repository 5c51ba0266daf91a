package pubsub

import (
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionKey(t *testing.T) {
	msg := message.NewMessage("evt_1", []byte(`{}`))
	msg.Metadata.Set(MetadataPartitionKey, "subs_1")

	key, err := PartitionKey("subscription-lifecycle-events", msg)
	require.NoError(t, err)
	assert.Equal(t, "subs_1", key)

	key, err = PartitionKey("subscription-lifecycle-events", message.NewMessage("evt_2", nil))
	require.NoError(t, err)
	assert.Empty(t, key)
}
