package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var ErrObjectNotFound = errors.New("object not found in storage")

// ProgressFunc receives the upload completion fraction in [0,1].
type ProgressFunc func(fraction float64)

// FileStorage is the binary object store behind post images. Uploads are
// write-once; the returned string is the durable retrieval URI stored as a
// post's image_url.
type FileStorage interface {
	UploadFile(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string, progress ProgressFunc) (string, error)
	DownloadFile(ctx context.Context, objectKey string) (io.ReadCloser, error)
}

// MinioClient implements FileStorage over an S3-compatible endpoint.
type MinioClient struct {
	client     *minio.Client
	bucketName string
	publicURL  string
}

type MinioConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	BucketName      string
	Region          string
	PublicURL       string
}

// NewMinioClient connects to the object store and ensures the image bucket
// exists.
func NewMinioClient(cfg MinioConfig) (*MinioClient, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client init: %w", err)
	}

	ctx := context.Background()
	exists, err := minioClient.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.BucketName, err)
	}
	if !exists {
		if err := minioClient.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", cfg.BucketName, err)
		}
		log.Printf("created bucket %q", cfg.BucketName)
	}

	return &MinioClient{
		client:     minioClient,
		bucketName: cfg.BucketName,
		publicURL:  strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

// UploadFile streams an object into the bucket and returns its retrieval
// URI. The progress callback, when non-nil, observes the transferred
// fraction; size must be known for it to reach 1.0.
func (c *MinioClient) UploadFile(
	ctx context.Context,
	objectKey string,
	reader io.Reader,
	size int64,
	contentType string,
	progress ProgressFunc,
) (string, error) {
	if progress != nil && size > 0 {
		reader = &progressReader{r: reader, total: size, report: progress}
	}

	opts := minio.PutObjectOptions{ContentType: contentType}
	info, err := c.client.PutObject(ctx, c.bucketName, objectKey, reader, size, opts)
	if err != nil {
		return "", fmt.Errorf("upload %q: %w", objectKey, err)
	}
	log.Printf("uploaded %q (%d bytes, etag %s)", objectKey, info.Size, info.ETag)

	return c.publicURL + "/" + objectKey, nil
}

// DownloadFile returns the object body; the caller closes it.
func (c *MinioClient) DownloadFile(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	object, err := c.client.GetObject(ctx, c.bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		var minioErr minio.ErrorResponse
		if errors.As(err, &minioErr) && minioErr.Code == "NoSuchKey" {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("get %q: %w", objectKey, err)
	}
	return object, nil
}

// ObjectKey builds the content key for an uploaded file: the upload
// timestamp in milliseconds prefixing the original filename. A missing or
// unusable filename falls back to a generated id.
func ObjectKey(filename string, now time.Time) string {
	name := sanitizeFilename(path.Base(filename))
	if name == "" || name == "." {
		name = uuid.NewString()
	}
	return fmt.Sprintf("%d-%s", now.UnixMilli(), name)
}

func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "._")
}

// progressReader reports cumulative read progress as a fraction of total.
type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	report ProgressFunc
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.read += int64(n)
		fraction := float64(p.read) / float64(p.total)
		if fraction > 1 {
			fraction = 1
		}
		p.report(fraction)
	}
	return n, err
}
