// Package bucket resolves stored image keys into public URLs served from the
// media bucket.
package bucket

import (
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/kramnica/marketplace-manager/internal/dependency"
)

type Config struct {
	S3AccessKey       string `mapstructure:"s3AccessKey"`
	S3SecretAccessKey string `mapstructure:"s3SecretAccessKey"`
	S3Endpoint        string `mapstructure:"s3Endpoint"`
	S3BucketName      string `mapstructure:"s3BucketName"`
	S3BucketLocation  string `mapstructure:"s3BucketLocation"`
	BaseFolder        string `mapstructure:"baseFolder"`
}

type Bucket struct {
	*minio.Client
	*Config
}

func (c *Config) Init() (dependency.FileStore, error) {
	cli, err := minio.New(c.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.S3AccessKey, c.S3SecretAccessKey, ""),
		Secure: true,
	})
	if err != nil {
		return nil, fmt.Errorf("can't create s3 client: %w", err)
	}
	return &Bucket{
		Client: cli,
		Config: c,
	}, nil
}

// ResolveURL turns a stored image src into a public URL. Absolute URLs pass
// through untouched, bucket keys get the bucket host and base folder
// prepended, and an empty src resolves to nil.
func (b *Bucket) ResolveURL(src string) *string {
	if src == "" {
		return nil
	}
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return &src
	}
	url := fmt.Sprintf("https://%s.%s/%s/%s",
		b.S3BucketName, b.S3Endpoint, b.BaseFolder, strings.TrimPrefix(src, "/"))
	return &url
}
