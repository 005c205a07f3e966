package storage

import (
	"context"
	"errors"
	"io"
	"strings"
)

var (
	// ErrObjectExists is returned by Put when the key is taken and upsert is off.
	ErrObjectExists = errors.New("The resource already exists")
	// ErrObjectNotFound is returned by Get for a missing key.
	ErrObjectNotFound = errors.New("Object not found")
)

// PublicPathPrefix is the URL path segment under which public objects are served.
const PublicPathPrefix = "/storage/v1/object/public/"

// PutOptions mirrors the upload options of the hosted bucket API.
type PutOptions struct {
	ContentType  string
	CacheControl string
	Upsert       bool
}

// Object is a stored blob with its metadata.
type Object struct {
	Body         []byte
	ContentType  string
	CacheControl string
}

// ObjectStore is a bucket-addressed blob store with publicly readable objects.
type ObjectStore interface {
	Put(ctx context.Context, bucket, key string, body io.Reader, opts PutOptions) error
	Get(ctx context.Context, bucket, key string) (*Object, error)
	Remove(ctx context.Context, bucket string, keys []string) error
	PublicURL(bucket, key string) string
}

func publicURL(base, bucket, key string) string {
	return strings.TrimRight(base, "/") + PublicPathPrefix + bucket + "/" + strings.TrimLeft(key, "/")
}
