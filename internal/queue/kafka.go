package queue

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"spamsniffer/internal/domain"
)

type Kafka struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafka(brokers []string, topic string) (*Kafka, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	return NewKafkaWithProducer(producer, topic), nil
}

func NewKafkaWithProducer(producer sarama.SyncProducer, topic string) *Kafka {
	return &Kafka{
		producer: producer,
		topic:    topic,
	}
}

// Publish keys scans by email ID so verdicts for one email stay ordered.
func (k *Kafka) Publish(ctx context.Context, scan domain.Scan) error {
	data, err := json.Marshal(scan)
	if err != nil {
		return err
	}

	key := scan.EmailID
	if key == "" {
		key = scan.ID
	}

	_, _, err = k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(data),
	})

	return err
}

func (k *Kafka) Close() error {
	return k.producer.Close()
}

type KafkaConsumer struct {
	group   sarama.ConsumerGroup
	topic   string
	handler func(email domain.Email) error
}

func NewKafkaConsumer(brokers []string, groupID, topic string) (*KafkaConsumer, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	config.Consumer.Offsets.Initial = sarama.OffsetNewest

	group, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, err
	}

	return &KafkaConsumer{
		group: group,
		topic: topic,
	}, nil
}

func (c *KafkaConsumer) Consume(ctx context.Context, handler func(email domain.Email) error) error {
	c.handler = handler

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			if err := c.group.Consume(ctx, []string{c.topic}, c); err != nil {
				return err
			}
		}
	}
}

func (c *KafkaConsumer) Close() error {
	return c.group.Close()
}

func (c *KafkaConsumer) Setup(_ sarama.ConsumerGroupSession) error   { return nil }
func (c *KafkaConsumer) Cleanup(_ sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim marks and skips undecodable messages. A handler failure ends
// the claim with nothing after it marked, so the next session resumes from
// the failed message.
func (c *KafkaConsumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		var email domain.Email
		if err := json.Unmarshal(msg.Value, &email); err != nil {
			log.Warn().Err(err).Int64("offset", msg.Offset).Msg("skipping malformed email")
			session.MarkMessage(msg, "")
			continue
		}

		if err := c.handler(email); err != nil {
			return fmt.Errorf("handling %s/%d offset %d: %w", msg.Topic, msg.Partition, msg.Offset, err)
		}

		session.MarkMessage(msg, "")
	}
	return nil
}
