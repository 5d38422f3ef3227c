package store

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/kiesman99/mosaic/pkg/tile"
)

// ObjectGetter is the part of the S3 client the store uses.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3 reads tiles stored as <prefix><address><ext> in a bucket.
type S3 struct {
	client ObjectGetter
	bucket string
	prefix string
	ext    string
}

// NewS3 returns a store reading from the bucket described by cfg.
func NewS3(cfg S3Config, opts ...Option) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	s3opts := []func(*s3.Options){
		func(o *s3.Options) {
			o.Region = cfg.Region
			if cfg.AccessKeyID != "" {
				o.Credentials = credentials.NewStaticCredentialsProvider(
					cfg.AccessKeyID,
					cfg.SecretAccessKey,
					"",
				)
			}
		},
	}
	if cfg.Endpoint != "" {
		s3opts = append(s3opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.UsePathStyle
		})
	}

	return NewS3WithClient(s3.New(s3.Options{}, s3opts...), cfg.Bucket, cfg.Prefix, opts...), nil
}

// NewS3WithClient returns a store reading from bucket through client.
func NewS3WithClient(client ObjectGetter, bucket, prefix string, opts ...Option) *S3 {
	o := newOptions(opts)
	return &S3{
		client: client,
		bucket: bucket,
		prefix: prefix,
		ext:    o.ext,
	}
}

// Key returns the object key of the tile at addr.
func (s *S3) Key(addr tile.Address) string {
	return s.prefix + addr.String() + s.ext
}

func (s *S3) Fetch(ctx context.Context, addr tile.Address) (image.Image, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.Key(addr)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		var notFoundErr *types.NotFound
		if errors.As(err, &noSuchKey) || errors.As(err, &notFoundErr) {
			return nil, notFound(addr)
		}
		return nil, fmt.Errorf("getting %s from s3: %w", s.Key(addr), err)
	}
	defer out.Body.Close()

	return decode(addr, out.Body)
}
