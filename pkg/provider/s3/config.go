// Package s3 implements the provider client for AWS S3 and S3-compatible storage.
package s3

import "fmt"

// Config configures an S3 client.
//
// Authentication priority (AWS SDK v2 default chain):
//  1. Explicit AccessKeyID/SecretAccessKey (if provided)
//  2. Environment variables (AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY)
//  3. Shared credentials file (~/.aws/credentials)
//  4. Shared config file (~/.aws/config) with profile
//  5. EC2 instance metadata / ECS task role / EKS IRSA
//
// For S3-compatible stores (MinIO, Wasabi, DigitalOcean Spaces), set Endpoint
// and typically ForcePathStyle. When Endpoint is set, no default region is
// applied.
type Config struct {
	// Bucket is the S3 bucket name (required).
	Bucket string

	// Region is the AWS region. For AWS S3 it defaults to us-east-1 when not
	// resolvable from environment or profile. No default with a custom Endpoint.
	Region string

	// Endpoint is a custom endpoint URL for S3-compatible stores.
	// Leave empty for AWS S3.
	Endpoint string

	// Profile is the AWS profile name from shared config.
	Profile string

	// AccessKeyID is an explicit access key. If set, SecretAccessKey must also
	// be set; takes precedence over the default credential chain.
	AccessKeyID string

	// SecretAccessKey is an explicit secret key. Required if AccessKeyID is set.
	SecretAccessKey string

	// ForcePathStyle forces path-style URLs (bucket in path, not subdomain).
	// Required for most S3-compatible stores.
	ForcePathStyle bool

	// MaxKeys is the default page size for List operations.
	// Zero uses DefaultMaxKeys. Values over MaxAllowedKeys are clamped.
	MaxKeys int
}

const (
	// DefaultMaxKeys is the default page size for List operations.
	DefaultMaxKeys = 1000

	// MaxAllowedKeys is the S3 API ceiling for a single page.
	MaxAllowedKeys = 1000

	// DefaultAWSRegion is the fallback region for AWS S3 when none is resolvable.
	DefaultAWSRegion = "us-east-1"
)

// Validate checks the configuration for required and conflicting values.
func (c Config) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("bucket is required")
	}
	if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
		return fmt.Errorf("access key ID and secret access key must be set together")
	}
	return nil
}
