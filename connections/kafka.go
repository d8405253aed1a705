package connections

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"github.com/xrpscan/ledgerlens/config"
	"github.com/xrpscan/ledgerlens/logger"
	"github.com/xrpscan/ledgerlens/models"
)

// KafkaPublisher publishes processed transactions and trace steps. Messages
// are keyed by transaction hash.
type KafkaPublisher struct {
	writer           *kafka.Writer
	transactionTopic string
	traceTopic       string
}

// processedMessage is the value of a message on the processed transactions topic.
type processedMessage struct {
	Account     string                     `json:"account"`
	Transaction models.ProcessedTransaction `json:"transaction"`
}

func NewKafkaPublisherFromEnv() *KafkaPublisher {
	brokers := strings.Split(config.EnvKafkaBootstrapServer(), ",")

	logger.Log.Info().Strs("brokers", brokers).Msg("Initializing Kafka writer")

	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			BatchSize:    config.EnvKafkaWriterBatchSize(),
			BatchBytes:   int64(config.EnvKafkaWriterBatchBytes()),
			BatchTimeout: time.Duration(config.EnvKafkaWriterBatchTimeoutMs()) * time.Millisecond,
			RequiredAcks: kafka.RequiredAcks(config.EnvKafkaWriterRequiredAcks()),
			Compression:  compressionCodec(config.EnvKafkaWriterCompression()),
		},
		transactionTopic: config.TopicTransactionsProcessed(),
		traceTopic:       config.TopicTraceSteps(),
	}
}

func compressionCodec(name string) kafka.Compression {
	switch strings.ToLower(name) {
	case "gzip":
		return kafka.Gzip
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	case "none":
		return 0
	}
	return kafka.Snappy
}

func (p *KafkaPublisher) ArchiveTransactions(ctx context.Context, account string, txs []models.ProcessedTransaction) error {
	msgs, err := transactionMessages(p.transactionTopic, account, txs)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	return errors.Wrap(p.writer.WriteMessages(ctx, msgs...), "publish transactions")
}

func (p *KafkaPublisher) ArchiveTraceStep(ctx context.Context, item models.TracePathItem) error {
	msg, err := traceStepMessage(p.traceTopic, item)
	if err != nil {
		return err
	}
	return errors.Wrap(p.writer.WriteMessages(ctx, msg), "publish trace step")
}

func (p *KafkaPublisher) Close() error {
	if p == nil {
		return nil
	}
	return closeWithTimeout("Kafka writer", p.writer.Close)
}

func transactionMessages(topic, account string, txs []models.ProcessedTransaction) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, 0, len(txs))
	for _, tx := range txs {
		value, err := json.Marshal(processedMessage{Account: account, Transaction: tx})
		if err != nil {
			return nil, errors.Wrapf(err, "encode transaction %s", tx.ID)
		}
		msgs = append(msgs, kafka.Message{
			Topic: topic,
			Key:   []byte(tx.ID),
			Value: value,
		})
	}
	return msgs, nil
}

func traceStepMessage(topic string, item models.TracePathItem) (kafka.Message, error) {
	value, err := json.Marshal(item)
	if err != nil {
		return kafka.Message{}, errors.Wrapf(err, "encode trace step %s", item.TxID)
	}
	return kafka.Message{Topic: topic, Key: []byte(item.TxID), Value: value}, nil
}
