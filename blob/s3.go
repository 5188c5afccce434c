package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Store keeps blobs in a bucket under an optional key prefix.
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Store loads AWS credentials from the default chain.
func NewS3Store(ctx context.Context, region, bucket, prefix string) (*S3Store, error) {
	if bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &S3Store{client: s3.NewFromConfig(cfg), bucket: bucket, prefix: prefix}, nil
}

func (s *S3Store) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// Put uploads body. Seekable bodies (multipart files) are sent with a known
// content length; anything else is streamed.
func (s *S3Store) Put(ctx context.Context, name, contentType string, body io.Reader) (Object, error) {
	if !ValidName(name) {
		return Object{}, ErrInvalidName
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(name)),
		Body:        body,
		ContentType: aws.String(contentType),
	}

	var size int64 = -1
	if seeker, ok := body.(io.Seeker); ok {
		end, err := seeker.Seek(0, io.SeekEnd)
		if err == nil {
			_, err = seeker.Seek(0, io.SeekStart)
		}
		if err != nil {
			return Object{}, fmt.Errorf("measure %s: %w", name, err)
		}
		size = end
		input.ContentLength = aws.Int64(size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return Object{}, fmt.Errorf("put s3://%s/%s: %w", s.bucket, s.key(name), err)
	}
	return Object{Name: name, ContentType: contentType, Size: size}, nil
}

func (s *S3Store) Open(ctx context.Context, name string) (io.ReadCloser, Object, error) {
	if !ValidName(name) {
		return nil, Object{}, ErrInvalidName
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, Object{}, ErrNotFound
		}
		return nil, Object{}, fmt.Errorf("get s3://%s/%s: %w", s.bucket, s.key(name), err)
	}

	object := Object{
		Name:        name,
		ContentType: aws.ToString(out.ContentType),
		Size:        aws.ToInt64(out.ContentLength),
	}
	if object.ContentType == "" {
		object.ContentType = "application/octet-stream"
	}
	return out.Body, object, nil
}
