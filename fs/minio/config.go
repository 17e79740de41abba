package minio

import (
	"github.com/minio/minio-go/v7"

	"github.com/jmgilman/envstage/errors"
)

// Config holds MinIO filesystem configuration.
type Config struct {
	// Endpoint is the MinIO server address, e.g. "localhost:9000".
	Endpoint string

	// Bucket is the bucket environments are staged into.
	Bucket string

	// AccessKey and SecretKey authenticate against Endpoint.
	AccessKey string
	SecretKey string

	// UseSSL enables HTTPS connections.
	UseSSL bool

	// Prefix namespaces every object key.
	Prefix string

	// Client is an optional pre-configured client. When set, Endpoint and
	// the credentials are ignored.
	Client *minio.Client

	// MultipartThreshold is the write size after which uploads stream.
	// Zero selects 5MB.
	MultipartThreshold int64

	// MaxConcurrency bounds parallel object copies during Rename.
	// Zero selects 10.
	MaxConcurrency int

	// DefaultReplication is reported for objects without a recorded
	// replication factor. Zero selects 1.
	DefaultReplication int16
}

// validate checks that either Client or a full set of connection settings
// is present.
func (c *Config) validate() error {
	if c.Bucket == "" {
		return errors.New(errors.CodeInvalidConfig, "bucket is required")
	}
	if c.Client != nil {
		return nil
	}
	if c.Endpoint == "" {
		return errors.New(errors.CodeInvalidConfig, "endpoint is required when client is not provided")
	}
	if c.AccessKey == "" || c.SecretKey == "" {
		return errors.New(errors.CodeInvalidConfig, "access key and secret key are required when client is not provided")
	}
	if c.DefaultReplication < 0 {
		return errors.New(errors.CodeInvalidConfig, "default replication must not be negative")
	}
	return nil
}
