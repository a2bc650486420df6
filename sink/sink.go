// Package sink opens film output destinations.  A name of the form
// gs://bucket/object streams to Google Cloud Storage; anything else is a local
// file.
package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	googleopt "google.golang.org/api/option"
)

const gcsScheme = "gs://"

// Create opens name for writing, truncating any existing content.  The write
// is only durable once Close returns nil.
func Create(ctx context.Context, name string) (io.WriteCloser, error) {
	if bucket, object, ok := ParseGCSPath(name); ok {
		return createGCS(ctx, bucket, object)
	}
	if strings.HasPrefix(name, gcsScheme) {
		return nil, fmt.Errorf("malformed GCS path %q; want gs://bucket/object", name)
	}

	f, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("while creating %q: %w", name, err)
	}
	return f, nil
}

// ParseGCSPath splits gs://bucket/object.  Both parts must be non-empty.
func ParseGCSPath(name string) (bucket, object string, ok bool) {
	if !strings.HasPrefix(name, gcsScheme) {
		return "", "", false
	}
	rest := strings.TrimPrefix(name, gcsScheme)
	slash := strings.Index(rest, "/")
	if slash <= 0 || slash == len(rest)-1 {
		return "", "", false
	}
	return rest[:slash], rest[slash+1:], true
}

// gcsWriter closes the storage client along with the object writer.
type gcsWriter struct {
	*storage.Writer
	client *storage.Client
}

func (w *gcsWriter) Close() error {
	werr := w.Writer.Close()
	cerr := w.client.Close()
	if werr != nil {
		return fmt.Errorf("while finalizing GCS object: %w", werr)
	}
	if cerr != nil {
		return fmt.Errorf("while closing GCS client: %w", cerr)
	}
	return nil
}

func createGCS(ctx context.Context, bucket, object string) (io.WriteCloser, error) {
	gcs, err := storage.NewClient(ctx, googleopt.WithUserAgent("toftracer"))
	if err != nil {
		return nil, fmt.Errorf("while creating GCS client: %w", err)
	}

	w := gcs.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = "text/plain"
	return &gcsWriter{Writer: w, client: gcs}, nil
}
