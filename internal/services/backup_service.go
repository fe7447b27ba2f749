package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"time"

	"fleet-backend/internal/config"
	"fleet-backend/internal/store"
	"fleet-backend/internal/timeutil"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	log "github.com/sirupsen/logrus"
)

// ObjectClient is the part of the S3 API the backups need
type ObjectClient interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// BackupObject describes one uploaded snapshot
type BackupObject struct {
	Key          string    `json:"key"`
	SizeBytes    int64     `json:"size_bytes"`
	LastModified time.Time `json:"last_modified"`
}

// BackupService uploads JSON snapshots of the whole store to an S3 compatible bucket
type BackupService struct {
	Store  *store.Store
	Client ObjectClient
	Bucket string
	Prefix string
	Clock  timeutil.Clock
}

func NewBackupService(st *store.Store, client ObjectClient, bucket, prefix string) *BackupService {
	return &BackupService{Store: st, Client: client, Bucket: bucket, Prefix: prefix}
}

// NewS3Client builds a client for the configured bucket. Endpoint may point at R2 or MinIO.
func NewS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.Backup.AccessKey,
			cfg.Backup.SecretKey,
			"",
		)),
		awsconfig.WithRegion(cfg.Backup.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to configure backup client: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Backup.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Backup.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Run takes a snapshot and uploads it
func (s *BackupService) Run(ctx context.Context) (*BackupObject, error) {
	now := clockNow(s.Clock)
	snap, err := store.Take(ctx, s.Store, now)
	if err != nil {
		return nil, fmt.Errorf("failed to take snapshot: %w", err)
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}

	key := path.Join(s.Prefix, fmt.Sprintf("fleet_%s.json", now.In(timeutil.BST).Format("20060102_150405")))
	_, err = s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", key, err)
	}

	log.Printf("[Backup] Uploaded %s (%d bytes)", key, len(data))
	return &BackupObject{Key: key, SizeBytes: int64(len(data)), LastModified: now}, nil
}

// List returns the uploaded snapshots, newest first
func (s *BackupService) List(ctx context.Context) ([]BackupObject, error) {
	prefix := s.Prefix
	if prefix != "" {
		prefix += "/"
	}
	out, err := s.Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.Bucket),
		Prefix: aws.String(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	objects := make([]BackupObject, 0, len(out.Contents))
	for _, obj := range out.Contents {
		o := BackupObject{Key: aws.ToString(obj.Key), SizeBytes: aws.ToInt64(obj.Size)}
		if obj.LastModified != nil {
			o.LastModified = *obj.LastModified
		}
		objects = append(objects, o)
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].LastModified.After(objects[j].LastModified) })
	return objects, nil
}

// Schedule runs a backup every interval until ctx is cancelled
func (s *BackupService) Schedule(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
				if _, err := s.Run(runCtx); err != nil {
					log.Errorf("[Backup] Scheduled backup failed: %v", err)
				}
				cancel()
			case <-ctx.Done():
				log.Println("[Backup] Scheduler stopped")
				return
			}
		}
	}()
	log.Printf("[Backup] Scheduler started (interval: %v)", interval)
}
