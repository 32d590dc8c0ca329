// Package publish uploads rendered graphs to S3.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/christophergentle/tpsgraph/internal/surface"
)

// S3API is the part of the S3 client the publisher uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Publisher writes rendered graphs to a bucket
type S3Publisher struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Publisher creates a new S3 publisher
func NewS3Publisher(ctx context.Context, bucket, prefix string) (*S3Publisher, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewS3PublisherWithClient(s3.NewFromConfig(cfg), bucket, prefix), nil
}

// NewS3PublisherWithClient creates a publisher on an existing client.
func NewS3PublisherWithClient(client S3API, bucket, prefix string) *S3Publisher {
	return &S3Publisher{client: client, bucket: bucket, prefix: prefix}
}

// Publish uploads data under key and returns its s3:// location.
func (p *S3Publisher) Publish(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to s3://%s/%s: %w", p.bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", p.bucket, key), nil
}

// PublishGraph uploads a render twice: under its timestamped key and as the
// app's latest graph, which is served with a short cache lifetime.
func (p *S3Publisher) PublishGraph(ctx context.Context, app, format string, at time.Time, data []byte) (string, error) {
	contentType := surface.ContentType(format)

	location, err := p.Publish(ctx, KeyFor(p.prefix, app, format, at), data, contentType)
	if err != nil {
		return "", err
	}

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(LatestKey(p.prefix, app, format)),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		CacheControl:  aws.String("max-age=60"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to update latest graph: %w", err)
	}

	log.Printf("Successfully published graph for %s to %s", app, location)
	return location, nil
}

// KeyFor builds prefix/app/2006/01/02/150405.<format> in UTC.
func KeyFor(prefix, app, format string, at time.Time) string {
	return path.Join(prefix, app, at.UTC().Format("2006/01/02/150405")+"."+surface.NormalizeFormat(format))
}

// LatestKey is prefix/app/latest.<format>.
func LatestKey(prefix, app, format string) string {
	return path.Join(prefix, app, "latest."+surface.NormalizeFormat(format))
}
