package kafka

import (
	"testing"

	"github.com/Shopify/sarama"
	"github.com/flexprice/lifecycle/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestGetSaramaConfig(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Events.TLS = true

	sc := GetSaramaConfig(cfg)
	assert.Equal(t, "subscription-lifecycle", sc.ClientID)
	assert.True(t, sc.Producer.Return.Successes)
	assert.Equal(t, sarama.OffsetOldest, sc.Consumer.Offsets.Initial)
	assert.True(t, sc.Net.TLS.Enable)
	assert.NotNil(t, sc.Producer.Partitioner)
	assert.NoError(t, sc.Validate())
}
