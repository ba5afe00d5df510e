// Package backup exports the workout history as a JSON snapshot and stores
// it in an S3-compatible bucket.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/claude/setlog/internal/config"
	"github.com/claude/setlog/internal/models"
)

// Snapshot is the backup payload: the full workout history at one moment.
type Snapshot struct {
	ExportedAt time.Time        `json:"exported_at"`
	Workouts   []models.Workout `json:"workouts"`
}

// Uploader writes snapshots to an S3 bucket.
type Uploader struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewUploader builds an S3 client from the backup config. A non-empty
// endpoint switches to path-style addressing for MinIO-style services.
func NewUploader(ctx context.Context, cfg config.BackupConfig) (*Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("backup.bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "",
		)))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Uploader{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Upload marshals the snapshot and puts it to the bucket. Returns the
// object key.
func (u *Uploader) Upload(ctx context.Context, snap *Snapshot) (string, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("marshaling snapshot: %w", err)
	}

	key := path.Join(u.prefix, snap.ExportedAt.Format("2006/01"),
		fmt.Sprintf("workouts-%s.json", snap.ExportedAt.Format("20060102-150405")))

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("uploading snapshot: %w", err)
	}
	return key, nil
}
