package blockstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"ark-go/internal/ark"
	"ark-go/internal/config"
)

// S3BlockStore stores blocks as objects in an S3 bucket under
// <prefix>/blocks/<ref>. Block refs are content checksums, so puts are
// idempotent and objects are never rewritten with different content.
type S3BlockStore struct {
	name     string
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// NewS3BlockStore creates a block store backed by an S3 bucket.
// When the config carries static credentials they are used directly;
// otherwise the default AWS credential chain applies.
func NewS3BlockStore(ctx context.Context, cfg config.BlockStoreConfig) (*S3BlockStore, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 block store requires s3_bucket to be set")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &S3BlockStore{
		name:     cfg.Name,
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   cfg.S3Bucket,
		prefix:   cfg.S3Prefix,
	}, nil
}

// Put stores a block under its ref. Skips the upload when the object
// already exists.
func (s *S3BlockStore) Put(ref string, data []byte) error {
	ctx := context.Background()

	ok, err := s.Has(ref)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(ref)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("uploading block %s: %w", ref, err)
	}
	return nil
}

// Get retrieves a block by ref.
func (s *S3BlockStore) Get(ref string) ([]byte, error) {
	out, err := s.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(ref)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("block not found: %s", ref)
		}
		return nil, fmt.Errorf("fetching block %s: %w", ref, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading block %s: %w", ref, err)
	}
	return data, nil
}

// Has reports whether the block object exists.
func (s *S3BlockStore) Has(ref string) (bool, error) {
	_, err := s.client.HeadObject(context.Background(), &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(ref)),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("checking block %s: %w", ref, err)
	}
	return true, nil
}

// ValidateSetup verifies that the bucket is reachable.
func (s *S3BlockStore) ValidateSetup() error {
	_, err := s.client.HeadBucket(context.Background(), &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("bucket %s not accessible: %w", s.bucket, err)
	}
	return nil
}

func (s *S3BlockStore) objectKey(ref string) string {
	return path.Join(s.prefix, "blocks", ref)
}

// Compile-time check that S3BlockStore implements ark.BlockStore interface
var _ ark.BlockStore = (*S3BlockStore)(nil)
