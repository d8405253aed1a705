package config

import "fmt"

// Kafka topic for transactions decoded from an account's perspective
func TopicTransactionsProcessed() string {
	return fmt.Sprintf("%s-transactions-processed", EnvKafkaTopicNamespace())
}

// Kafka topic for funds trace hops
func TopicTraceSteps() string {
	return fmt.Sprintf("%s-trace-steps", EnvKafkaTopicNamespace())
}
