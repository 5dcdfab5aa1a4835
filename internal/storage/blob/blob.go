package blob

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	errs "github.com/wallfeed/wall-service/internal/lib/errors"
)

// Namespace is the logical prefix all wall images are stored under
const Namespace = "public"

type Config struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	Bucket        string
	PublicBaseURL string
	CacheLifetime time.Duration
}

// Store uploads wall images to an S3-compatible object store and resolves
// publicly reachable URLs for them.
type Store struct {
	cfg    Config
	client *minio.Client
}

func New(cfg Config) (*Store, error) {
	const op = "blob.New"

	cl, err := minio.New(strings.TrimPrefix(cfg.Endpoint, "http://"), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errs.Fail(op, err)
	}

	return &Store{cfg: cfg, client: cl}, nil
}

func (s *Store) EnsureBucket(ctx context.Context) error {
	const op = "blob.EnsureBucket"

	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return errs.Fail(op, err)
	}
	if !exists {
		if err = s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return errs.Fail(op, err)
		}
	}

	return nil
}

// Upload stores one image and returns its key and public URL. The key keeps
// the original file name but carries a random prefix, so same-named files
// never replace each other.
func (s *Store) Upload(
	ctx context.Context,
	filename string,
	contentType string,
	r io.Reader,
	size int64,
) (key string, url string, err error) {
	const op = "blob.Upload"

	key = ObjectKey(filename)

	_, err = s.client.PutObject(ctx, s.cfg.Bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: fmt.Sprintf("max-age=%d", int(s.cfg.CacheLifetime.Seconds())),
	})
	if err != nil {
		return "", "", errs.Fail(op, err)
	}

	return key, s.PublicURL(key), nil
}

// PublicURL resolves the publicly fetchable URL of a stored object
func (s *Store) PublicURL(key string) string {
	base := strings.TrimSuffix(s.cfg.PublicBaseURL, "/")
	if base == "" {
		base = s.client.EndpointURL().String()
	}

	return base + "/" + s.cfg.Bucket + "/" + key
}

// ObjectKey derives a collision-avoiding key in the images namespace from
// the given file name
func ObjectKey(filename string) string {
	name := sanitize(path.Base(filename))
	if name == "" || name == "." {
		name = "image"
	}

	return Namespace + "/" + uuid.NewString()[:8] + "-" + name
}

// sanitize keeps the key URL-safe without losing the original name
func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
