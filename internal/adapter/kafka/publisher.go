// Package kafka publishes converted feature collections to a Kafka topic.
package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/paulmach/orb/geojson"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher produces one message per converted input file to a sink topic.
// It implements pipeline.FeaturePublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the given brokers and topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes the feature collection and sends it keyed by the
// output document's base name.
func (p *Publisher) Publish(ctx context.Context, name string, fc *geojson.FeatureCollection) error {
	msg, err := buildMessage(name, fc)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return err
	}
	p.logger.Info("published feature collection", "key", name, "features", len(fc.Features))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// buildMessage marshals a feature collection into a Kafka message.
func buildMessage(name string, fc *geojson.FeatureCollection) (kafkago.Message, error) {
	data, err := fc.MarshalJSON()
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize feature collection: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(name),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "content_type", Value: []byte("application/geo+json")},
			{Key: "record_count", Value: []byte(strconv.Itoa(len(fc.Features)))},
		},
	}, nil
}
