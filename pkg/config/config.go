package config

import (
	"fmt"
	"time"
)

// Ledger drivers
const (
	LedgerDriverEthereum = "ethereum"
	LedgerDriverMemory   = "memory"
)

// Index drivers
const (
	IndexDriverPostgres = "postgres"
	IndexDriverQdrant   = "qdrant"
	IndexDriverMemory   = "memory"
)

// APIServerConfig represents the face authentication server configuration
type APIServerConfig struct {
	Server         ServerConfig         `yaml:"server"`
	Logging        LoggingConfig        `yaml:"logging"`
	Ledger         LedgerConfig         `yaml:"ledger"`
	Index          IndexConfig          `yaml:"index"`
	Extractor      ExtractorConfig      `yaml:"extractor"`
	Verification   VerificationConfig   `yaml:"verification"`
	Reconciliation ReconciliationConfig `yaml:"reconciliation"`
	Session        SessionConfig        `yaml:"session"`
	Monitoring     MonitoringConfig     `yaml:"monitoring"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string          `yaml:"host" default:"0.0.0.0"`
	Port            int             `yaml:"port" default:"8081" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" default:"15s"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" default:"3m"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" default:"60s"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" default:"30s"`
	RequestTimeout  time.Duration   `yaml:"request_timeout" default:"3m"`
	MaxBodyBytes    int64           `yaml:"max_body_bytes" default:"10485760" validate:"gt=0"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig bounds how often a single client may call the credential endpoints
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled" default:"true"`
	RequestsPerMinute int  `yaml:"requests_per_minute" default:"30" validate:"required_if=Enabled true"`
	Burst             int  `yaml:"burst" default:"5" validate:"required_if=Enabled true"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format     string `yaml:"format" default:"json" validate:"oneof=json console"`
	OutputPath string `yaml:"output_path" default:"stdout"`
}

// LedgerConfig contains the credential ledger settings
type LedgerConfig struct {
	Driver string `yaml:"driver" default:"ethereum" validate:"oneof=ethereum memory"`
	// CommitTimeout bounds the wait for a submitted registration to be mined.
	CommitTimeout time.Duration `yaml:"commit_timeout" default:"2m" validate:"gt=0"`
	// RecheckTimeout bounds the isRegistered re-query issued after a commit wait
	// times out or is cancelled.
	RecheckTimeout time.Duration    `yaml:"recheck_timeout" default:"15s" validate:"gt=0"`
	Visibility     VisibilityConfig `yaml:"visibility"`
	Ethereum       EthereumConfig   `yaml:"ethereum"`
	// VisibilityLag is only honoured by the memory driver.
	VisibilityLag int `yaml:"visibility_lag"`
}

// VisibilityConfig is the read-back policy applied after a confirmed commit
type VisibilityConfig struct {
	Attempts       int           `yaml:"attempts" default:"3" validate:"gt=0"`
	InitialBackoff time.Duration `yaml:"initial_backoff" default:"500ms" validate:"gt=0"`
	MaxBackoff     time.Duration `yaml:"max_backoff" default:"2s" validate:"gtefield=InitialBackoff"`
}

// EthereumConfig contains Ethereum client settings for the FaceAuth contract
type EthereumConfig struct {
	RPCURL              string        `yaml:"rpc_url" default:"http://localhost:8545"`
	ChainID             int64         `yaml:"chain_id" default:"1337"`
	ContractAddress     string        `yaml:"contract_address"`
	PrivateKey          string        `yaml:"private_key"`
	GasLimit            uint64        `yaml:"gas_limit" default:"300000"`
	MaxGasPrice         string        `yaml:"max_gas_price"`
	ReceiptPollInterval time.Duration `yaml:"receipt_poll_interval" default:"1s" validate:"gt=0"`
	StartBlock          uint64        `yaml:"start_block"`
}

// IndexConfig contains the local similarity index settings
type IndexConfig struct {
	Driver     string         `yaml:"driver" default:"postgres" validate:"oneof=postgres qdrant memory"`
	Dimensions int            `yaml:"dimensions" default:"128" validate:"gt=0"`
	Database   DatabaseConfig `yaml:"database"`
	Qdrant     QdrantConfig   `yaml:"qdrant"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host" default:"localhost"`
	Port     int    `yaml:"port" default:"5432"`
	User     string `yaml:"user" default:"postgres"`
	Password string `yaml:"password"`
	Database string `yaml:"database" default:"faceauth"`
	SSLMode  string `yaml:"ssl_mode" default:"disable"`
}

// QdrantConfig contains Qdrant connection settings
type QdrantConfig struct {
	Host       string `yaml:"host" default:"localhost"`
	Port       int    `yaml:"port" default:"6334"`
	APIKey     string `yaml:"api_key"`
	UseTLS     bool   `yaml:"use_tls"`
	Collection string `yaml:"collection" default:"face_embeddings"`
}

// ExtractorConfig contains the face feature extractor settings
type ExtractorConfig struct {
	URL     string        `yaml:"url" default:"http://localhost:5001"`
	Timeout time.Duration `yaml:"timeout" default:"30s" validate:"gt=0"`
}

// VerificationConfig contains biometric decision settings
type VerificationConfig struct {
	// Tolerance is the maximum euclidean distance accepted as the same face.
	Tolerance float64 `yaml:"tolerance" default:"0.6" validate:"gt=0"`
}

// ReconciliationConfig contains settings for ledger/index reconciliation
type ReconciliationConfig struct {
	Enabled        bool          `yaml:"enabled" default:"true"`
	InitialTimeout time.Duration `yaml:"initial_timeout" default:"2m" validate:"gt=0"`
	// ScanTimeout bounds periodic scans and scans requested through the admin endpoint.
	ScanTimeout time.Duration `yaml:"scan_timeout" default:"2m" validate:"gt=0"`
	// Interval of zero disables periodic scans.
	Interval      time.Duration `yaml:"interval" default:"5m" validate:"gte=0"`
	WatchlistSize int           `yaml:"watchlist_size" default:"10000" validate:"gt=0"`
	Concurrency   int           `yaml:"concurrency" default:"8" validate:"gt=0"`
	// DiscoverFromLedger enumerates registered usernames from ledger events when the driver supports it.
	DiscoverFromLedger bool `yaml:"discover_from_ledger"`
}

// SessionConfig contains settings for tokens issued after a successful verification
type SessionConfig struct {
	Enabled bool          `yaml:"enabled"`
	Secret  string        `yaml:"secret" validate:"required_if=Enabled true"`
	Issuer  string        `yaml:"issuer" default:"faceauth-middleware"`
	TTL     time.Duration `yaml:"ttl" default:"15m" validate:"gt=0"`
}

// MonitoringConfig contains monitoring and metrics settings
type MonitoringConfig struct {
	Enabled bool `yaml:"enabled" default:"true"`
}

// GetConnectionString returns the PostgreSQL connection string
func (c *DatabaseConfig) GetConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}
