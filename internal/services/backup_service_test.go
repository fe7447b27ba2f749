package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"fleet-backend/internal/store"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBucket struct {
	objects map[string][]byte
	putErr  error
	listed  *s3.ListObjectsV2Input
	modTime map[string]time.Time
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: map[string][]byte{}, modTime: map[string]time.Time{}}
}

func (b *fakeBucket) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if b.putErr != nil {
		return nil, b.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	b.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (b *fakeBucket) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	b.listed = in
	out := &s3.ListObjectsV2Output{}
	for key, data := range b.objects {
		mod := b.modTime[key]
		out.Contents = append(out.Contents, types.Object{
			Key:          aws.String(key),
			Size:         aws.Int64(int64(len(data))),
			LastModified: &mod,
		})
	}
	return out, nil
}

func TestBackup_UploadsSnapshot(t *testing.T) {
	f := newFleet(t)
	f.exportTrip(t)
	bucket := newFakeBucket()
	svc := NewBackupService(f.st, bucket, "fleet-backups", "snapshots")
	svc.Clock = func() time.Time { return testNow }

	obj, err := svc.Run(f.ctx)
	require.NoError(t, err)

	assert.Equal(t, "snapshots/fleet_20240510_093000.json", obj.Key)
	data, ok := bucket.objects[obj.Key]
	require.True(t, ok)
	assert.Equal(t, int64(len(data)), obj.SizeBytes)

	var snap store.Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Len(t, snap.Trips, 1)
	assert.Len(t, snap.Users, 5)
}

func TestBackup_UploadFailure(t *testing.T) {
	f := newFleet(t)
	bucket := newFakeBucket()
	bucket.putErr = errors.New("access denied")
	svc := NewBackupService(f.st, bucket, "fleet-backups", "snapshots")

	_, err := svc.Run(f.ctx)
	assert.ErrorIs(t, err, bucket.putErr)
}

func TestBackup_ListNewestFirst(t *testing.T) {
	bucket := newFakeBucket()
	bucket.objects["snapshots/a.json"] = []byte("{}")
	bucket.objects["snapshots/b.json"] = []byte("{\"x\":1}")
	bucket.modTime["snapshots/a.json"] = testNow.Add(-time.Hour)
	bucket.modTime["snapshots/b.json"] = testNow
	svc := NewBackupService(nil, bucket, "fleet-backups", "snapshots")

	list, err := svc.List(context.Background())
	require.NoError(t, err)

	require.Len(t, list, 2)
	assert.Equal(t, "snapshots/b.json", list[0].Key)
	assert.Equal(t, int64(7), list[0].SizeBytes)
	assert.Equal(t, "snapshots/", aws.ToString(bucket.listed.Prefix))
	assert.Equal(t, "fleet-backups", aws.ToString(bucket.listed.Bucket))
}
