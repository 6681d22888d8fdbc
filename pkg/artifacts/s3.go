package artifacts

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dd0wney/fedigraph/pkg/config"
	"github.com/dd0wney/fedigraph/pkg/logging"
)

// ObjectPutter is the subset of the S3 client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Publisher uploads the files of a run directory.
type Publisher interface {
	Publish(ctx context.Context, dir *Dir, runID string) (string, error)
}

// S3Publisher uploads run artifacts to s3://bucket/prefix/runID/.
type S3Publisher struct {
	client ObjectPutter
	bucket string
	prefix string
	logger logging.Logger
}

// NewS3Publisher wraps an existing client.
func NewS3Publisher(client ObjectPutter, bucket, prefix string, logger logging.Logger) *S3Publisher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &S3Publisher{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: logger.With(logging.Component("artifacts")),
	}
}

// NewS3PublisherFromConfig builds a client from the default AWS credential
// chain. It returns nil when no bucket is configured.
func NewS3PublisherFromConfig(ctx context.Context, cfg config.OutputConfig, logger logging.Logger) (*S3Publisher, error) {
	if cfg.S3Bucket == "" {
		return nil, nil
	}
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewS3Publisher(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.S3Prefix, logger), nil
}

// Key returns the object key of a run file.
func (p *S3Publisher) Key(runID, name string) string {
	if p.prefix == "" {
		return path.Join(runID, name)
	}
	return path.Join(p.prefix, runID, name)
}

// Location returns the s3:// URL of a run.
func (p *S3Publisher) Location(runID string) string {
	return "s3://" + p.bucket + "/" + p.Key(runID, "") + "/"
}

// Publish uploads every tracked file and returns the run location.
// It stops at the first failed upload.
func (p *S3Publisher) Publish(ctx context.Context, dir *Dir, runID string) (string, error) {
	files := dir.Files()
	timer := logging.StartTimer(p.logger, "artifacts published",
		logging.RunID(runID), logging.String("bucket", p.bucket), logging.Count(len(files)))

	for _, name := range files {
		if err := p.put(ctx, dir, runID, name); err != nil {
			timer.EndError(err)
			return "", err
		}
	}
	timer.End()
	return p.Location(runID), nil
}

func (p *S3Publisher) put(ctx context.Context, dir *Dir, runID, name string) error {
	f, err := os.Open(dir.Join(filepath.FromSlash(name)))
	if err != nil {
		return fmt.Errorf("open artifact %s: %w", name, err)
	}
	defer f.Close()

	key := p.Key(runID, name)
	in := &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if ct := contentType(name); ct != "" {
		in.ContentType = aws.String(ct)
	}
	if _, err := p.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("upload %s to s3://%s/%s: %w", name, p.bucket, key, err)
	}
	p.logger.Debug("artifact uploaded", logging.Path(name), logging.String("key", key))
	return nil
}

func contentType(name string) string {
	switch path.Ext(name) {
	case ".json":
		return "application/json"
	case ".svg":
		return "image/svg+xml"
	case ".prom":
		return "text/plain; version=0.0.4"
	}
	return mime.TypeByExtension(path.Ext(name))
}
