// Package config loads the dknn CLI configuration file.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/goccy/go-yaml"

	"github.com/hupe1980/dknn"
	"github.com/hupe1980/dknn/blobstore"
	"github.com/hupe1980/dknn/blobstore/minio"
	"github.com/hupe1980/dknn/blobstore/s3"
	"github.com/hupe1980/dknn/codec"
	"github.com/hupe1980/dknn/lsh"
	"github.com/hupe1980/dknn/persistence"
)

// Config is the YAML configuration of the CLI.
//
//	layers: [conv1, conv2, fc]
//	k: 75
//	num_classes: 10
//	compression: zstd
//	store:
//	  type: s3
//	  bucket: models
//	  prefix: mnist
type Config struct {
	Layers      []string `yaml:"layers"`
	K           int      `yaml:"k"`
	NumClasses  int      `yaml:"num_classes"`
	HashBits    int      `yaml:"hash_bits"`
	Seed        uint64   `yaml:"seed"`
	Parallelism int      `yaml:"parallelism"`
	Compression string   `yaml:"compression"`
	Codec       string   `yaml:"codec"`
	Store       Store    `yaml:"store"`
	Log         Log      `yaml:"log"`
	Metrics     Metrics  `yaml:"metrics"`
}

// Store selects the snapshot blob store.
type Store struct {
	// Type is one of local, s3 or minio.
	Type string `yaml:"type"`
	// Path is the root directory of a local store.
	Path string `yaml:"path"`

	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	Region string `yaml:"region"`
	// CommitTable enables the DynamoDB CURRENT pointer for s3.
	CommitTable string `yaml:"commit_table"`

	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Secure    bool   `yaml:"secure"`
}

// Metrics configures Prometheus metrics. A non-empty Textfile makes the
// CLI write the collected metrics there in text exposition format, for the
// node_exporter textfile collector.
type Metrics struct {
	Namespace string `yaml:"namespace"`
	Textfile  string `yaml:"textfile"`
}

// Log configures CLI logging.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used for unset fields.
func Default() Config {
	return Config{
		HashBits:    lsh.DefaultHashBits,
		Seed:        lsh.DefaultSeed,
		Compression: persistence.CompressionZSTD.String(),
		Store:       Store{Type: "local", Path: "."},
		Log:         Log{Level: "info", Format: "text"},
		Metrics:     Metrics{Namespace: "dknn"},
	}
}

// Load reads path over the defaults. Environment variables in the file
// are expanded.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return &cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks the values needed to build a classifier.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Layers) == 0 {
		errs = append(errs, errors.New("layers must not be empty"))
	}
	if c.K <= 0 {
		errs = append(errs, errors.New("k must be positive"))
	}
	if c.NumClasses <= 0 {
		errs = append(errs, errors.New("num_classes must be positive"))
	}
	if c.HashBits <= 0 {
		errs = append(errs, errors.New("hash_bits must be positive"))
	}
	if _, err := persistence.ParseCompression(c.Compression); err != nil {
		errs = append(errs, err)
	}
	if _, err := codec.Parse(c.Codec); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// CompressionValue parses Compression.
func (c *Config) CompressionValue() persistence.Compression {
	v, err := persistence.ParseCompression(c.Compression)
	if err != nil {
		return persistence.CompressionZSTD
	}
	return v
}

// CodecValue parses Codec, falling back to the default codec.
func (c *Config) CodecValue() codec.Codec {
	v, err := codec.Parse(c.Codec)
	if err != nil {
		return codec.Default
	}
	return v
}

// Logger builds the configured logger.
func (c *Config) Logger(verbose bool) *dknn.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}
	if strings.EqualFold(c.Log.Format, "json") {
		return dknn.NewJSONLogger(level)
	}
	return dknn.NewTextLogger(level)
}

// OpenStore connects to the configured blob store.
func (c *Config) OpenStore(ctx context.Context) (blobstore.BlobStore, error) {
	s := c.Store
	switch strings.ToLower(s.Type) {
	case "", "local":
		return blobstore.NewLocalStore(s.Path), nil
	case "minio":
		store, err := minio.Dial(s.Endpoint, s.AccessKey, s.SecretKey, s.Secure, s.Bucket, s.Prefix)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "s3":
		var loadOpts []func(*config.LoadOptions) error
		if s.Region != "" {
			loadOpts = append(loadOpts, config.WithRegion(s.Region))
		}
		awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, err
		}
		store := s3.NewStore(awss3.NewFromConfig(awsCfg), s.Bucket, s3.WithPrefix(s.Prefix))
		if s.CommitTable == "" {
			return store, nil
		}
		return s3.NewDDBCommitStore(store, dynamodb.NewFromConfig(awsCfg), s.CommitTable), nil
	default:
		return nil, fmt.Errorf("unknown store type %q", s.Type)
	}
}
