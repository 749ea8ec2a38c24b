package services

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go/logging"
	"github.com/charmbracelet/log"
	"github.com/songhub/backend/internal/config"
)

// S3Service stores covers in an S3 compatible bucket.
type S3Service struct {
	client    *s3.Client
	bucket    string
	publicURL string
	// private objects are uploaded with the private ACL and located by key
	private bool
}

func NewS3Service(ctx context.Context, cfg *config.Config, l *log.Logger) (*S3Service, error) {
	client, err := buildClient(ctx, cfg.MediaS3Endpoint, cfg.MediaS3Region, cfg.MediaS3AccessKeyID, cfg.MediaS3SecretAccessKey, cfg.MediaS3UsePathStyle, l)
	if err != nil {
		return nil, err
	}
	return &S3Service{client: client, bucket: cfg.MediaCoversBucket, publicURL: cfg.MediaPublicURL}, nil
}

// NewS3BackupService stores catalog exports privately in BACKUP_S3_BUCKET,
// falling back to the covers bucket.
func NewS3BackupService(ctx context.Context, cfg *config.Config, l *log.Logger) (*S3Service, error) {
	client, err := buildClient(ctx, cfg.MediaS3Endpoint, cfg.MediaS3Region, cfg.MediaS3AccessKeyID, cfg.MediaS3SecretAccessKey, cfg.MediaS3UsePathStyle, l)
	if err != nil {
		return nil, err
	}
	bucket := cfg.BackupS3Bucket
	if bucket == "" {
		bucket = cfg.MediaCoversBucket
	}
	return &S3Service{client: client, bucket: bucket, private: true}, nil
}

func buildClient(ctx context.Context, endpoint, region, key, secret string, pathStyle bool, l *log.Logger) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(key, secret, "")),
		awsconfig.WithLogger(logging.LoggerFunc(func(c logging.Classification, format string, v ...interface{}) {
			if c == logging.Warn {
				l.Warnf(format, v...)
				return
			}
			l.Debugf(format, v...)
		})),
	)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = pathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return client, nil
}

// Put uploads an object and returns its location: the public URL for covers,
// the bare key for private objects.
func (s *S3Service) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	uploader := manager.NewUploader(s.client)
	_, err := uploader.Upload(ctx, s.putInput(key, data, contentType))
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	if s.private {
		return key, nil
	}
	return s.URL(key), nil
}

func (s *S3Service) putInput(key string, data []byte, contentType string) *s3.PutObjectInput {
	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	}
	in.ACL = s3types.ObjectCannedACLPublicRead
	if s.private {
		in.ACL = s3types.ObjectCannedACLPrivate
	}
	return in
}

// Get downloads the object behind a location produced by Put.
func (s *S3Service) Get(ctx context.Context, location string) ([]byte, error) {
	key := s.key(location)
	if key == "" {
		return nil, fmt.Errorf("location %q is outside bucket %s", location, s.bucket)
	}
	downloader := manager.NewDownloader(s.client)
	buf := manager.NewWriteAtBuffer([]byte{})
	_, err := downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", key, err)
	}
	return buf.Bytes(), nil
}

// Delete removes the object behind a location produced by Put. Foreign URLs are ignored.
func (s *S3Service) Delete(ctx context.Context, location string) error {
	key := s.key(location)
	if key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

// URL builds the public URL of key: MEDIA_PUBLIC_URL when set, else endpoint/bucket/key.
func (s *S3Service) URL(key string) string {
	return s.base() + escapeKey(key)
}

func (s *S3Service) base() string {
	if s.publicURL != "" {
		return s.publicURL + "/"
	}
	e := s.client.Options().BaseEndpoint
	if e == nil {
		return fmt.Sprintf("https://%s.s3.amazonaws.com/", s.bucket)
	}
	return fmt.Sprintf("%s/%s/", strings.TrimRight(*e, "/"), s.bucket)
}

func (s *S3Service) key(location string) string {
	if s.private {
		return location
	}
	return s.keyFromURL(location)
}

func (s *S3Service) keyFromURL(location string) string {
	rest, ok := strings.CutPrefix(location, s.base())
	if !ok || rest == "" {
		return ""
	}
	key, err := url.PathUnescape(rest)
	if err != nil {
		return ""
	}
	return key
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
