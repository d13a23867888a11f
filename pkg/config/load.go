package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const minSessionSecretLen = 32

// LoadAPIServer loads the server configuration from a YAML file.
// ${VAR} references are expanded from the environment before decoding.
func LoadAPIServer(configPath string) (*APIServerConfig, error) {
	raw, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseAPIServer(raw)
}

// ParseAPIServer decodes, defaults and validates a YAML document.
func ParseAPIServer(raw []byte) (*APIServerConfig, error) {
	var cfg APIServerConfig
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply config defaults: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader([]byte(os.ExpandEnv(string(raw)))))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateAPIServer(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func validateAPIServer(cfg *APIServerConfig) error {
	if err := validator.New().Struct(cfg); err != nil {
		return err
	}

	if cfg.Ledger.Driver == LedgerDriverEthereum {
		if cfg.Ledger.Ethereum.RPCURL == "" {
			return fmt.Errorf("ledger.ethereum.rpc_url is required")
		}
		if cfg.Ledger.Ethereum.ContractAddress == "" {
			return fmt.Errorf("ledger.ethereum.contract_address is required")
		}
		if cfg.Ledger.Ethereum.PrivateKey == "" {
			return fmt.Errorf("ledger.ethereum.private_key is required")
		}
	}

	switch cfg.Index.Driver {
	case IndexDriverPostgres:
		if cfg.Index.Database.Host == "" {
			return fmt.Errorf("index.database.host is required")
		}
	case IndexDriverQdrant:
		if cfg.Index.Qdrant.Host == "" {
			return fmt.Errorf("index.qdrant.host is required")
		}
	}

	if cfg.Session.Enabled && len(cfg.Session.Secret) < minSessionSecretLen {
		return fmt.Errorf("session.secret must be at least %d characters", minSessionSecretLen)
	}
	return nil
}
