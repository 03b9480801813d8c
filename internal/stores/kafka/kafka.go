// Package kafka publishes order lifecycle events for downstream consumers.
package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

type Conf struct {
	client *kgo.Client
}

// NewConf connects a producer to the broker at host:port.
func NewConf(host, port string) (*Conf, error) {
	if host == "" || port == "" {
		return nil, fmt.Errorf("kafka host or port is empty")
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(host+":"+port),
		kgo.AllowAutoTopicCreation(),
		kgo.ProduceRequestTimeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}
	return &Conf{client: client}, nil
}

// ProduceMessage synchronously produces one record to the topic.
func (c *Conf) ProduceMessage(topic string, key, value []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	record := &kgo.Record{Topic: topic, Key: key, Value: value}
	if err := c.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("failed to produce message to %s: %w", topic, err)
	}
	return nil
}

// Close flushes and releases the underlying client.
func (c *Conf) Close() {
	c.client.Close()
}
