package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

func EnvLoad(filenames ...string) {
	if len(filenames) == 0 {
		filenames = append(filenames, ".env")
	}
	for _, filename := range filenames {
		log.Printf("Loading configuration file: %s", filename)
		err := godotenv.Load(filename)
		if err != nil {
			log.Fatalf("Error loading configuration file: %s", filename)
		}
	}
}

// EnvLoadOptional loads config files that exist and ignores missing ones.
// Used by the CLI, which must also work from plain environment variables.
func EnvLoadOptional(filenames ...string) {
	for _, filename := range filenames {
		if _, err := os.Stat(filename); err != nil {
			continue
		}
		if err := godotenv.Load(filename); err != nil {
			log.Printf("Error loading configuration file %s: %v", filename, err)
		}
	}
}

func envInt(key string, def int, valid func(int) bool) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && valid(v) {
		return v
	}
	return def
}

func positive(v int) bool    { return v > 0 }
func nonNegative(v int) bool { return v >= 0 }

/*
* Service settings
 */

// Get HTTP server hostname
func EnvServerHost() string {
	return os.Getenv("SERVER_HOST")
}

// Get HTTP server port
func EnvServerPort() string {
	v := os.Getenv("SERVER_PORT")
	if v == "" {
		return "3000"
	}
	return v
}

// Get default log level
func EnvLogLevel() string {
	return os.Getenv("LOG_LEVEL")
}

// Get default log type ("console" or "json")
func EnvLogType() string {
	return os.Getenv("LOG_TYPE")
}

// Get log file path
func EnvLogFilePath() string {
	v := os.Getenv("LOG_FILE_PATH")
	if v == "" {
		return "logs/ledgerlens.log"
	}
	return v
}

// Get log file enabled flag
func EnvLogFileEnabled() bool {
	return os.Getenv("LOG_FILE_ENABLED") == "true"
}

// Get log file max size in MB
func EnvLogFileMaxSize() int {
	return envInt("LOG_FILE_MAX_SIZE_MB", 100, positive)
}

// Get log file max backups
func EnvLogFileMaxBackups() int {
	return envInt("LOG_FILE_MAX_BACKUPS", 3, nonNegative)
}

// Get log file max age in days
func EnvLogFileMaxAge() int {
	return envInt("LOG_FILE_MAX_AGE_DAYS", 7, positive)
}

/*
* XRPL protocol (compatible) server settings
 */
func EnvXrplWebsocketURL() string {
	v := os.Getenv("XRPL_WEBSOCKET_URL")
	if v == "" {
		return "wss://s1.ripple.com"
	}
	return v
}

// Comma separated list of servers tried in order when the primary is unreachable
func EnvXrplWebsocketFallbackURLs() []string {
	v := os.Getenv("XRPL_WEBSOCKET_FALLBACK_URLS")
	if v == "" {
		return []string{"wss://s2.ripple.com", "wss://xrpl.ws"}
	}
	var urls []string
	for _, u := range strings.Split(v, ",") {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// All servers, primary first, without duplicates
func EnvXrplServers() []string {
	seen := map[string]bool{}
	var servers []string
	for _, u := range append([]string{EnvXrplWebsocketURL()}, EnvXrplWebsocketFallbackURLs()...) {
		if seen[u] {
			continue
		}
		seen[u] = true
		servers = append(servers, u)
	}
	return servers
}

// Per request timeout for XRPL commands
func EnvXrplRequestTimeoutMs() int {
	return envInt("XRPL_REQUEST_TIMEOUT_MS", 10000, positive)
}

// Number of transactions requested per account_tx page
func EnvAccountTxPageLimit() int {
	return envInt("ACCOUNT_TX_PAGE_LIMIT", 100, positive)
}

/*
* External data sources
 */
func EnvPriceAPIURL() string {
	v := os.Getenv("PRICE_API_URL")
	if v == "" {
		return "https://api.coingecko.com/api/v3/simple/price?ids=ripple&vs_currencies=usd"
	}
	return v
}

func EnvKnownAddressesURL() string {
	v := os.Getenv("KNOWN_ADDRESSES_URL")
	if v == "" {
		return "https://api.xrpscan.com/api/v1/names/well-known"
	}
	return v
}

func EnvHTTPClientTimeoutMs() int {
	return envInt("HTTP_CLIENT_TIMEOUT_MS", 10000, positive)
}

/*
* Kafka settings
 */
func EnvKafkaBootstrapServer() string {
	return os.Getenv("KAFKA_BOOTSTRAP_SERVER")
}

func EnvKafkaTopicNamespace() string {
	v := os.Getenv("KAFKA_TOPIC_NAMESPACE")
	if v == "" {
		return "ledgerlens"
	}
	return v
}

// Writer batching and delivery settings
func EnvKafkaWriterBatchSize() int {
	return envInt("KAFKA_WRITER_BATCH_SIZE", 100, positive)
}

func EnvKafkaWriterBatchBytes() int {
	return envInt("KAFKA_WRITER_BATCH_BYTES", 1024*1024, positive) // 1 MiB default
}

func EnvKafkaWriterBatchTimeoutMs() int {
	return envInt("KAFKA_WRITER_BATCH_TIMEOUT_MS", 50, nonNegative)
}

func EnvKafkaWriterCompression() string {
	v := os.Getenv("KAFKA_WRITER_COMPRESSION")
	if v == "" {
		return "snappy" // lightweight default
	}
	return v
}

func EnvKafkaWriterRequiredAcks() int {
	if v, err := strconv.Atoi(os.Getenv("KAFKA_WRITER_REQUIRED_ACKS")); err == nil {
		// allow -1, 0, 1
		if v == -1 || v == 0 || v == 1 {
			return v
		}
	}
	return 1 // leader-only default
}

/*
* ClickHouse settings
 */
func EnvClickHouseEnabled() bool {
	return os.Getenv("CLICKHOUSE_ENABLED") == "true"
}

func EnvClickHouseHost() string {
	v := os.Getenv("CLICKHOUSE_HOST")
	if v == "" {
		return "localhost"
	}
	return v
}

func EnvClickHousePort() int {
	return envInt("CLICKHOUSE_PORT", 9000, positive) // native port
}

func EnvClickHouseDatabase() string {
	v := os.Getenv("CLICKHOUSE_DATABASE")
	if v == "" {
		return "ledgerlens"
	}
	return v
}

func EnvClickHouseUser() string {
	v := os.Getenv("CLICKHOUSE_USER")
	if v == "" {
		return "default"
	}
	return v
}

func EnvClickHousePassword() string {
	return os.Getenv("CLICKHOUSE_PASSWORD")
}

// Batch size for ClickHouse inserts
func EnvClickHouseBatchSize() int {
	return envInt("CLICKHOUSE_BATCH_SIZE", 1000, positive)
}

// Batch timeout in milliseconds for ClickHouse inserts
func EnvClickHouseBatchTimeoutMs() int {
	return envInt("CLICKHOUSE_BATCH_TIMEOUT_MS", 5000, positive)
}
