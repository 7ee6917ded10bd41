package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/everFinance/arname/schema"
	"github.com/everFinance/arname/vm"
	"gopkg.in/yaml.v3"
)

var (
	ErrMissingField = errors.New("config_missing_field")
)

const (
	DefaultPort       = ":8080"
	DefaultBoltDir    = "./data/bolt"
	DefaultRateLimit  = "30-S"
	DefaultS3Interval = 60
)

// Load reads a yaml config file and fills in defaults.
func Load(path string) (schema.Config, error) {
	by, err := os.ReadFile(path)
	if err != nil {
		return schema.Config{}, err
	}
	return Parse(by)
}

func Parse(by []byte) (schema.Config, error) {
	cfg := schema.Config{}
	if err := yaml.Unmarshal(by, &cfg); err != nil {
		return cfg, err
	}
	SetDefaults(&cfg)
	return cfg, Validate(cfg)
}

func SetDefaults(cfg *schema.Config) {
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if !cfg.Memory && cfg.BoltDir == "" {
		cfg.BoltDir = DefaultBoltDir
	}
	if cfg.RateLimit == "" {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.S3Backup.Enable && cfg.S3Backup.Interval <= 0 {
		cfg.S3Backup.Interval = DefaultS3Interval
	}
	if cfg.Genesis.Registrar.MaxBatchSize == 0 {
		cfg.Genesis.Registrar.MaxBatchSize = schema.DefaultBatchSize
	}
}

func Validate(cfg schema.Config) error {
	if cfg.ChainId == "" {
		return fmt.Errorf("%w: chainId", ErrMissingField)
	}
	if cfg.Bech32Prefix == "" {
		return fmt.Errorf("%w: bech32Prefix", ErrMissingField)
	}
	reg := cfg.Genesis.Registrar
	if reg.Admin == "" {
		return fmt.Errorf("%w: genesis.registrar.admin", ErrMissingField)
	}
	api := vm.NewApi(cfg.Bech32Prefix)
	for _, addr := range []string{reg.Admin, reg.Operator} {
		if addr == "" {
			continue
		}
		if err := api.AddrValidate(addr); err != nil {
			return err
		}
	}
	for _, b := range cfg.Genesis.Balances {
		if err := api.AddrValidate(b.Address); err != nil {
			return err
		}
		if _, err := schema.ParseCoin(b.Denom, b.Amount); err != nil {
			return err
		}
	}
	if cfg.Kafka.Start && cfg.Kafka.Uri == "" {
		return fmt.Errorf("%w: kafka.uri", ErrMissingField)
	}
	if cfg.S3Backup.Enable && cfg.S3Backup.Bucket == "" {
		return fmt.Errorf("%w: s3Backup.bucket", ErrMissingField)
	}
	return nil
}
