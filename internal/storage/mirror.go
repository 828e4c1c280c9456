package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rohmanhakim/docs-harvester/internal/metadata"
	"google.golang.org/api/googleapi"
)

/*
Mirror copies files that already live in local reference storage to an
object store. Mirroring is best effort: a failure is recorded and never
changes the outcome of a reference.
*/
type Mirror interface {
	Put(ctx context.Context, objectName string, body []byte, contentType string) error
	Bucket() string
}

// ObjectName keys an artifact as <prefix>/<refID>/<filename>.
func ObjectName(prefix string, refID string, filename string) string {
	return strings.TrimPrefix(path.Join(prefix, refID, filename), "/")
}

// MirrorFiles uploads each local file of refID and returns how many were
// mirrored.
func MirrorFiles(
	ctx context.Context,
	mirror Mirror,
	metadataSink metadata.MetadataSink,
	prefix string,
	refID string,
	localPaths []string,
) int {
	mirrored := 0
	for _, localPath := range localPaths {
		err := mirrorFile(ctx, mirror, prefix, refID, localPath)
		if err != nil {
			var storageError *StorageError
			if !errors.As(err, &storageError) {
				storageError = &StorageError{Message: err.Error(), Cause: ErrCauseMirrorFailure, Path: localPath}
			}
			metadataSink.RecordError(
				time.Now(),
				"storage",
				"MirrorFiles",
				mapStorageErrorToMetadataCause(storageError),
				err.Error(),
				[]metadata.Attribute{
					metadata.NewAttr(metadata.AttrRefID, refID),
					metadata.NewAttr(metadata.AttrWritePath, localPath),
					metadata.NewAttr(metadata.AttrBucket, mirror.Bucket()),
				},
			)
			continue
		}
		mirrored++
		metadataSink.RecordArtifact(
			metadata.ArtifactMirror,
			ObjectName(prefix, refID, filepath.Base(localPath)),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrRefID, refID),
				metadata.NewAttr(metadata.AttrBucket, mirror.Bucket()),
			},
		)
	}
	return mirrored
}

func mirrorFile(ctx context.Context, mirror Mirror, prefix string, refID string, localPath string) error {
	body, err := os.ReadFile(localPath)
	if err != nil {
		return &StorageError{Message: err.Error(), Cause: ErrCausePathError, Path: localPath}
	}
	name := filepath.Base(localPath)
	return mirror.Put(ctx, ObjectName(prefix, refID, name), body, contentTypeFor(name))
}

func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// GCSMirror writes objects only if they do not exist yet, so reruns never
// rewrite what an earlier run mirrored.
type GCSMirror struct {
	bucket *gcs.BucketHandle
	name   string
}

func NewGCSMirror(client *gcs.Client, bucket string) *GCSMirror {
	return &GCSMirror{bucket: client.Bucket(bucket), name: bucket}
}

func (g *GCSMirror) Bucket() string {
	return g.name
}

func (g *GCSMirror) Put(ctx context.Context, objectName string, body []byte, contentType string) error {
	writer := g.bucket.Object(objectName).If(gcs.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, bytes.NewReader(body)); err != nil {
		_ = writer.Close()
		if alreadyExists(err) {
			return nil
		}
		return &StorageError{Message: err.Error(), Retryable: true, Cause: ErrCauseMirrorFailure, Path: objectName}
	}
	if err := writer.Close(); err != nil {
		if alreadyExists(err) {
			return nil
		}
		return &StorageError{Message: err.Error(), Retryable: true, Cause: ErrCauseMirrorFailure, Path: objectName}
	}
	return nil
}

// alreadyExists reports the precondition failure of a DoesNotExist write.
func alreadyExists(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == 412
}

type MinioParam struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

type MinioMirror struct {
	client *minio.Client
	bucket string
}

// NewMinioMirror connects to the endpoint and creates the bucket when it is
// missing.
func NewMinioMirror(ctx context.Context, param MinioParam) (*MinioMirror, error) {
	if strings.TrimSpace(param.Endpoint) == "" {
		return nil, &StorageError{Message: "minio endpoint is required", Cause: ErrCauseMirrorUnavailable}
	}
	bucket := strings.TrimSpace(param.Bucket)
	if bucket == "" {
		return nil, &StorageError{Message: "minio bucket is required", Cause: ErrCauseMirrorUnavailable}
	}
	client, err := minio.New(param.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(param.AccessKey, param.SecretKey, ""),
		Secure: param.UseSSL,
	})
	if err != nil {
		return nil, &StorageError{Message: err.Error(), Cause: ErrCauseMirrorUnavailable}
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, &StorageError{Message: err.Error(), Retryable: true, Cause: ErrCauseMirrorUnavailable}
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, &StorageError{Message: err.Error(), Cause: ErrCauseMirrorUnavailable}
		}
	}
	return &MinioMirror{client: client, bucket: bucket}, nil
}

func (m *MinioMirror) Bucket() string {
	return m.bucket
}

func (m *MinioMirror) Put(ctx context.Context, objectName string, body []byte, contentType string) error {
	_, err := m.client.PutObject(
		ctx,
		m.bucket,
		objectName,
		bytes.NewReader(body),
		int64(len(body)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return &StorageError{Message: err.Error(), Retryable: true, Cause: ErrCauseMirrorFailure, Path: objectName}
	}
	return nil
}
