package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// CloudStorageClient is a Store backed by a Google Cloud Storage bucket.
type CloudStorageClient struct {
	BucketName string
	Client     *storage.Client
}

// NewCloudStorageClient connects to GCS using ambient credentials.
func NewCloudStorageClient(ctx context.Context, bucketName string) (*CloudStorageClient, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloud storage client: %v", err)
	}
	return &CloudStorageClient{
		BucketName: bucketName,
		Client:     client,
	}, nil
}

// Upload writes data to the object at path.
func (c *CloudStorageClient) Upload(ctx context.Context, path string, data []byte) error {
	obj := c.Client.Bucket(c.BucketName).Object(path)
	wc := obj.NewWriter(ctx)
	if _, err := io.Copy(wc, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write data to object: %v", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close object writer: %v", err)
	}
	return nil
}

// Download reads the object at path.
func (c *CloudStorageClient) Download(ctx context.Context, path string) ([]byte, error) {
	rc, err := c.Client.Bucket(c.BucketName).Object(path).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open object reader: %v", err)
	}
	defer func() {
		if err := rc.Close(); err != nil {
			log.Printf("blob: failed to close object reader: %v", err)
		}
	}()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read object: %v", err)
	}
	return data, nil
}

// Remove deletes the object at path.
func (c *CloudStorageClient) Remove(ctx context.Context, path string) error {
	if err := c.Client.Bucket(c.BucketName).Object(path).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object: %v", err)
	}
	return nil
}

// RemovePrefix deletes every object under prefix, continuing past individual
// failures.
func (c *CloudStorageClient) RemovePrefix(ctx context.Context, prefix string) error {
	bucket := c.Client.Bucket(c.BucketName)
	it := bucket.Objects(ctx, &storage.Query{Prefix: prefix})

	var firstErr error
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to list objects under %s: %v", prefix, err)
		}
		if err := bucket.Object(attrs.Name).Delete(ctx); err != nil {
			log.Printf("blob: failed to delete object %s: %v", attrs.Name, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
