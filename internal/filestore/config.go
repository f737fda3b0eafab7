package filestore

import "time"

// Provider identifies the file storage backend.
type Provider string

const (
	ProviderMinIO Provider = "minio"
)

// DefaultPresignTTL is how long export download links stay valid.
const DefaultPresignTTL = time.Hour

// Config holds all settings needed to connect to a file storage backend.
type Config struct {
	// Provider is the storage backend (e.g. ProviderMinIO).
	Provider Provider

	// Endpoint is the host:port of the storage server.
	// Example: "localhost:9000" for local MinIO.
	Endpoint string

	// AccessKey is the access key ID (MinIO / S3 style).
	AccessKey string

	// SecretKey is the secret access key.
	SecretKey string

	// UseSSL controls whether TLS is used for the connection.
	UseSSL bool

	// Region is used by region-aware backends (e.g. AWS S3) and when
	// creating the bucket. Leave empty for MinIO.
	Region string

	// Bucket receives collection exports. It is created on first use.
	Bucket string

	// PresignTTL bounds the lifetime of download links.
	PresignTTL time.Duration
}

// DefaultConfig returns a sensible local-dev config for MinIO.
func DefaultConfig(endpoint, accessKey, secretKey string) *Config {
	return &Config{
		Provider:   ProviderMinIO,
		Endpoint:   endpoint,
		AccessKey:  accessKey,
		SecretKey:  secretKey,
		UseSSL:     false,
		Bucket:     "docdeck-exports",
		PresignTTL: DefaultPresignTTL,
	}
}
