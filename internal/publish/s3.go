package publish

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/landsuit/internal/resilience"
)

// putObjectAPI is the subset of the S3 client used for uploads.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config configures the S3 publisher.
type S3Config struct {
	Bucket string
	Region string
	Prefix string
	Retry  resilience.RetryConfig
}

// S3Publisher uploads rasters to an S3 bucket and returns their virtual-host
// style object URL.
type S3Publisher struct {
	client putObjectAPI
	cfg    S3Config
}

// NewS3 builds an S3 publisher from the default AWS credential chain.
func NewS3(ctx context.Context, cfg S3Config) (*S3Publisher, error) {
	if cfg.Bucket == "" {
		return nil, eris.New("publish: s3 bucket is required")
	}
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "publish: load aws config")
	}
	if cfg.Region == "" {
		cfg.Region = awsCfg.Region
	}
	return &S3Publisher{client: s3.NewFromConfig(awsCfg), cfg: cfg}, nil
}

// Key returns the object key for a local file.
func (p *S3Publisher) Key(file string) string {
	name := filepath.Base(file)
	if p.cfg.Prefix == "" {
		return name
	}
	return path.Join(strings.Trim(p.cfg.Prefix, "/"), name)
}

// URL returns the public URL of key.
func (p *S3Publisher) URL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.cfg.Bucket, p.cfg.Region, key)
}

// Publish uploads the file at file, retrying transient failures.
func (p *S3Publisher) Publish(ctx context.Context, file string) (string, error) {
	key := p.Key(file)
	retry := p.cfg.Retry
	retry.OnRetry = resilience.RetryLogger("publish", "s3 put")

	err := resilience.Do(ctx, retry, func(ctx context.Context) error {
		f, err := os.Open(file)
		if err != nil {
			return eris.Wrapf(err, "open %s", file)
		}
		defer f.Close() //nolint:errcheck

		_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(p.cfg.Bucket),
			Key:         aws.String(key),
			Body:        f,
			ContentType: aws.String("image/tiff"),
		})
		return err
	})
	if err != nil {
		return "", eris.Wrapf(err, "publish: upload s3://%s/%s", p.cfg.Bucket, key)
	}

	url := p.URL(key)
	zap.L().Info("published raster", zap.String("bucket", p.cfg.Bucket), zap.String("key", key))
	return url, nil
}
