package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/soundprediction/graphsvc/pkg/graphdoc"
)

// objectFetchTimeout bounds a single object-store download, per spec §5.
const objectFetchTimeout = 290 * time.Second

// FileLoader is the "dynamic trait object" capability described in spec
// §9: a single get_object(key) -> document seam with two implementations,
// so the ingestion orchestrator never depends on where an input file
// actually lives.
type FileLoader interface {
	Load(ctx context.Context, key string) (*graphdoc.Document, error)
}

// S3Loader fetches ingestion input documents from an S3-compatible bucket,
// grounded on original_source/src/s3/download.rs's create_bucket_ops /
// read_graph_from_s3.
type S3Loader struct {
	client *s3.Client
	bucket string
}

// NewS3Loader returns a loader bound to bucket using client.
func NewS3Loader(client *s3.Client, bucket string) *S3Loader {
	return &S3Loader{client: client, bucket: bucket}
}

// Load downloads key and decodes it as a graph document. The call is bounded
// by objectFetchTimeout regardless of the caller's context deadline.
func (l *S3Loader) Load(ctx context.Context, key string) (*graphdoc.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, objectFetchTimeout)
	defer cancel()

	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("ingest: failed to download %q from bucket %q: %w", key, l.bucket, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("ingest: failed to read object body for %q: %w", key, err)
	}

	var doc graphdoc.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("ingest: failed to decode %q: %w", key, err)
	}
	return &doc, nil
}

// LocalFileLoader reads ingestion input documents from a local directory,
// used for tests and local development in place of a real bucket.
type LocalFileLoader struct {
	Dir string
}

// NewLocalFileLoader returns a loader rooted at dir.
func NewLocalFileLoader(dir string) *LocalFileLoader {
	return &LocalFileLoader{Dir: dir}
}

// Load reads Dir/key and decodes it as a graph document.
func (l *LocalFileLoader) Load(ctx context.Context, key string) (*graphdoc.Document, error) {
	path := filepath.Join(l.Dir, key)
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: failed to read local file %q: %w", path, err)
	}

	var doc graphdoc.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("ingest: failed to decode %q: %w", path, err)
	}
	return &doc, nil
}
