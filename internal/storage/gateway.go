package storage

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/caltechlibrary/distillery-sub000/internal/config"
	"github.com/caltechlibrary/distillery-sub000/internal/logging"
)

// ErrIntegrityMismatch indicates the bucket acknowledged an upload with a
// token that does not match the local checksum.
var ErrIntegrityMismatch = errors.New("upload integrity mismatch")

type objectAPI interface {
	PutObjectWithContext(aws.Context, *s3.PutObjectInput, ...request.Option) (*s3.PutObjectOutput, error)
	HeadBucketWithContext(aws.Context, *s3.HeadBucketInput, ...request.Option) (*s3.HeadBucketOutput, error)
}

// Gateway uploads verified derivatives to the preservation bucket and checks
// that each object landed intact.
type Gateway struct {
	api    objectAPI
	bucket string
	logger *slog.Logger
}

// NewGateway builds a gateway from storage configuration. Credentials fall
// back to the default AWS chain when not set explicitly.
func NewGateway(cfg config.Storage, logger *slog.Logger) (*Gateway, error) {
	awsConfig := aws.NewConfig().WithRegion(cfg.Region)
	if cfg.Endpoint != "" {
		awsConfig = awsConfig.WithEndpoint(cfg.Endpoint)
	}
	if cfg.ForcePathStyle {
		awsConfig = awsConfig.WithS3ForcePathStyle(true)
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsConfig = awsConfig.WithCredentials(
			credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, ""))
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("initialize storage session: %w", err)
	}
	return newGateway(s3.New(sess), cfg.Bucket, logger), nil
}

func newGateway(api objectAPI, bucket string, logger *slog.Logger) *Gateway {
	return &Gateway{
		api:    api,
		bucket: bucket,
		logger: logging.NewComponentLogger(logger, "storage"),
	}
}

// Bucket returns the configured bucket name.
func (g *Gateway) Bucket() string {
	return g.bucket
}

// ObjectURI returns the canonical URI for a stored key.
func (g *Gateway) ObjectURI(key string) string {
	return fmt.Sprintf("s3://%s/%s", g.bucket, key)
}

// CheckBucket verifies the bucket exists and is reachable with the current
// credentials.
func (g *Gateway) CheckBucket(ctx context.Context) error {
	_, err := g.api.HeadBucketWithContext(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(g.bucket),
	})
	if err != nil {
		return fmt.Errorf("head bucket %s: %w", g.bucket, err)
	}
	return nil
}

// Put uploads the file at path under key, sending the checksum so the bucket
// rejects corrupted transfers, and compares the acknowledgement token against
// the same checksum. It returns the object URI.
func (g *Gateway) Put(ctx context.Context, key, path string, checksum []byte) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	output, err := g.api.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:     aws.String(g.bucket),
		Key:        aws.String(key),
		Body:       file,
		ContentMD5: aws.String(base64.StdEncoding.EncodeToString(checksum)),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	etag := strings.Trim(aws.StringValue(output.ETag), `"`)
	if etag != hex.EncodeToString(checksum) {
		return "", fmt.Errorf("%w: key %s: etag %s", ErrIntegrityMismatch, key, etag)
	}

	uri := g.ObjectURI(key)
	g.logger.Debug("object stored", logging.String(logging.FieldKey, key))
	return uri, nil
}
