package firebase

import (
	"context"
	stderrors "errors"
	"fmt"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// Bucket wraps a Cloud Storage bucket with the handful of operations the
// menu image job needs.
type Bucket struct {
	handle *gcs.BucketHandle
}

func NewBucket(handle *gcs.BucketHandle) *Bucket {
	return &Bucket{handle: handle}
}

// List returns the names of all objects under prefix.
func (b *Bucket) List(ctx context.Context, prefix string) ([]string, error) {
	it := b.handle.Objects(ctx, &gcs.Query{Prefix: prefix})

	var names []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, err)
		}
		names = append(names, attrs.Name)
	}
	return names, nil
}

// Delete removes an object. An object that is already gone is not an error.
func (b *Bucket) Delete(ctx context.Context, name string) error {
	err := b.handle.Object(name).Delete(ctx)
	if err != nil && !stderrors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

// Upload writes data to name, replacing any existing object.
func (b *Bucket) Upload(ctx context.Context, name string, data []byte, contentType string, metadata map[string]string) error {
	w := b.handle.Object(name).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = metadata

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", name, err)
	}
	return nil
}

// MakePublic grants allUsers read access to an object.
func (b *Bucket) MakePublic(ctx context.Context, name string) error {
	if err := b.handle.Object(name).ACL().Set(ctx, gcs.AllUsers, gcs.RoleReader); err != nil {
		return fmt.Errorf("make %s public: %w", name, err)
	}
	return nil
}
