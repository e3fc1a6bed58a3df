// Package kafka publishes coordinate-discovery events for downstream
// consumers (cache warmers, analytics).
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/geoff-maddock/arcane-city-geo/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Announcer produces coordinate-discovery messages to a Kafka topic.
// It implements domain.Announcer.
type Announcer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewAnnouncer creates a Kafka producer for the discovery topic.
func NewAnnouncer(brokers []string, topic string, logger *slog.Logger) *Announcer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Announcer{writer: w, logger: logger}
}

// Announce publishes one discovery event, keyed by location ID so replays
// for the same location land on the same partition.
func (a *Announcer) Announce(ctx context.Context, d domain.CoordinateDiscovered) error {
	msg, err := serializeToMessage(d)
	if err != nil {
		return err
	}
	return a.writer.WriteMessages(ctx, msg)
}

func (a *Announcer) Close() error {
	return a.writer.Close()
}

// serializeToMessage marshals a discovery event into a Kafka message.
func serializeToMessage(d domain.CoordinateDiscovered) (kafkago.Message, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize discovery event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(strconv.FormatInt(d.LocationID, 10)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte("coordinate_discovered")},
			{Key: "discovered_at", Value: []byte(d.DiscoveredAt.Format(time.RFC3339))},
		},
	}, nil
}
