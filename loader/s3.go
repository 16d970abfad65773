package loader

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/pivolan/survey_analyzer/survey"
)

// S3Config holds the client settings for s3:// sources. Credentials come from
// the default AWS chain.
type S3Config struct {
	Region    string
	Endpoint  string // optional, for S3 compatible stores
	PathStyle bool
}

// ObjectGetter is the part of the S3 client Load needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

func isS3(source string) bool {
	return strings.HasPrefix(source, "s3://")
}

// parseS3 splits s3://bucket/key into its parts.
func parseS3(source string) (bucket, key string, err error) {
	u, err := url.Parse(source)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s: %v", survey.ErrUnsupportedFormat, source, err)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("%w: %s: want s3://bucket/key", survey.ErrUnsupportedFormat, source)
	}
	return u.Host, key, nil
}

// NewS3Client builds an S3 client from cfg and the default AWS configuration.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// fetchS3 downloads the object behind source into dir and returns its path.
func fetchS3(ctx context.Context, o *options, source, dir string) (string, error) {
	bucket, key, err := parseS3(source)
	if err != nil {
		return "", err
	}
	client := o.s3Client
	if client == nil {
		c, err := NewS3Client(ctx, o.s3)
		if err != nil {
			return "", fmt.Errorf("s3 client: %w", err)
		}
		client = c
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return "", fmt.Errorf("%w: %s", survey.ErrFileNotFound, source)
		}
		return "", fmt.Errorf("get %s: %w", source, err)
	}
	defer out.Body.Close()

	destPath := filepath.Join(dir, path.Base(key))
	if err := writeFile(destPath, out.Body); err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("download %s: %w", source, err)
	}
	o.logger.Debug("s3 object downloaded", "bucket", bucket, "key", key, "path", destPath)
	return destPath, nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchKey" || code == "NotFound" || code == "NoSuchBucket"
	}
	return false
}
