// Package artifact publishes built static assets to S3-compatible object
// storage so they can be served from a CDN instead of the SSR server.
package artifact

import (
	"context"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-multierror"
	slogctx "github.com/veqryn/slog-context"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/kyori-mfv/mfext/internal/config"
	mferrors "github.com/kyori-mfv/mfext/internal/errors"
)

// DefaultConcurrency is the number of parallel uploads.
const DefaultConcurrency = 8

const (
	cacheImmutable = "public, max-age=31536000, immutable"
	cacheShort     = "public, max-age=60"
)

// ObjectPutter is the part of *s3.Client a Publisher needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Object is one file to upload.
type Object struct {
	// Path is the local file.
	Path string

	// Key is the object key, including the prefix.
	Key string

	ContentType  string
	CacheControl string
	Size         int64
}

// Result summarizes a publish.
type Result struct {
	Objects  []Object
	Bytes    int64
	Duration time.Duration
	DryRun   bool
}

// Options configures a Publisher.
type Options struct {
	Bucket string
	Prefix string

	// Concurrency bounds parallel uploads. Defaults to DefaultConcurrency.
	Concurrency int

	// DryRun lists the objects without uploading them.
	DryRun bool

	// Immutable lists file names (relative, slash separated) that never
	// change under the same key and get a long cache lifetime. Everything
	// else is cached briefly.
	Immutable []string
}

// Publisher uploads a directory tree to a bucket.
type Publisher struct {
	client  ObjectPutter
	options Options
}

// New creates a Publisher.
func New(client ObjectPutter, options Options) *Publisher {
	if options.Concurrency <= 0 {
		options.Concurrency = DefaultConcurrency
	}
	options.Prefix = strings.Trim(options.Prefix, "/")
	return &Publisher{client: client, options: options}
}

// NewS3Client creates an S3 client for cfg. Credentials come from
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN. A custom
// endpoint (MinIO, R2 and the like) switches to path-style addressing.
func NewS3Client(cfg config.PublishConfig) *s3.Client {
	opts := s3.Options{
		Region:      cfg.Region,
		Credentials: aws.NewCredentialsCache(aws.CredentialsProviderFunc(envCredentials)),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}

func envCredentials(context.Context) (aws.Credentials, error) {
	id := os.Getenv("AWS_ACCESS_KEY_ID")
	secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return aws.Credentials{}, errors.Base("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
	}
	return aws.Credentials{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "environment",
	}, nil
}

// Plan lists the objects for every regular file under dir, sorted by key.
func (p *Publisher) Plan(dir string) ([]Object, error) {
	immutable := make(map[string]bool, len(p.options.Immutable))
	for _, name := range p.options.Immutable {
		immutable[name] = true
	}

	var objects []Object
	err := filepath.WalkDir(dir, func(file string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, file)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		cache := cacheShort
		if immutable[rel] {
			cache = cacheImmutable
		}
		objects = append(objects, Object{
			Path:         file,
			Key:          p.key(rel),
			ContentType:  contentType(rel),
			CacheControl: cache,
			Size:         info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// Publish uploads every file under dir. Uploads continue after a failure so
// one run reports every object that could not be written.
func (p *Publisher) Publish(ctx context.Context, dir string) (*Result, error) {
	start := time.Now()
	logger := slogctx.FromCtx(ctx).With("component", "artifact")

	if p.options.Bucket == "" {
		return nil, mferrors.New("E162").
			WithDetail("No bucket configured").
			WithSuggestion("Set publish.bucket in " + config.ConfigFileName + " or pass --bucket")
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, mferrors.New("E141").WithDetail(dir + " does not exist").Wrap(err)
	}

	objects, err := p.Plan(dir)
	if err != nil {
		return nil, mferrors.New("E162").Wrap(err)
	}

	result := &Result{Objects: objects, DryRun: p.options.DryRun}
	for _, o := range objects {
		result.Bytes += o.Size
	}

	if !p.options.DryRun {
		var (
			mu   sync.Mutex
			errs *multierror.Error
		)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.options.Concurrency)
		for _, o := range objects {
			g.Go(func() error {
				if err := p.put(gctx, o); err != nil {
					mu.Lock()
					errs = multierror.Append(errs, errors.Errorf("%s: %w", o.Key, err))
					mu.Unlock()
					return nil
				}
				logger.Debug("uploaded", "key", o.Key, "size", humanize.Bytes(uint64(o.Size)))
				return nil
			})
		}
		_ = g.Wait()

		if err := errs.ErrorOrNil(); err != nil {
			return result, mferrors.New("E162").
				WithDetail(err.Error()).
				Wrap(err)
		}
	}

	result.Duration = time.Since(start)
	logger.Info("published",
		"bucket", p.options.Bucket,
		"prefix", p.options.Prefix,
		"objects", len(objects),
		"size", humanize.Bytes(uint64(result.Bytes)),
		"dry_run", p.options.DryRun,
	)
	return result, nil
}

func (p *Publisher) put(ctx context.Context, o Object) error {
	f, err := os.Open(o.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.options.Bucket),
		Key:           aws.String(o.Key),
		Body:          f,
		ContentLength: aws.Int64(o.Size),
		ContentType:   aws.String(o.ContentType),
		CacheControl:  aws.String(o.CacheControl),
	})
	return err
}

func (p *Publisher) key(rel string) string {
	if p.options.Prefix == "" {
		return rel
	}
	return path.Join(p.options.Prefix, rel)
}

func contentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".wasm":
		return "application/wasm"
	case ".js", ".mjs":
		return "text/javascript; charset=utf-8"
	}
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
