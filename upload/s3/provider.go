package s3

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/c2h5oh/datasize"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"

	"github.com/food-connect-platform/food-connect-api/env"
)

const keyPrefix = "foods"

// Provider implements an upload provider against the S3 API
type Provider struct {
	maxBytes int64
	uploader *s3manager.Uploader
	bucket   string
	logger   zerolog.Logger
}

// Configured reports whether the environment asks for S3 uploads at all
func Configured() bool {
	return env.GetEnvOrDefault("UPLOAD_S3_BUCKET", "") != ""
}

// NewProvider creates a new instance of a Provider
// and parses environment variables
func NewProvider(logger zerolog.Logger) (*Provider, error) {
	maxBytes, err := env.GetBytesEnv("max upload file size", "UPLOAD_MAX_SIZE", 8*datasize.MB)
	if err != nil {
		return nil, err
	}

	// Parse the S3 credentials from the environment
	awsRegion, err := env.GetEnv("upload AWS region", "UPLOAD_AWS_REGION")
	if err != nil {
		return nil, err
	}
	awsAccessKeyID, err := env.GetEnv("upload AWS access key ID", "UPLOAD_AWS_ACCESS_KEY_ID")
	if err != nil {
		return nil, err
	}
	awsSecretAccessKey, err := env.GetEnv("upload AWS secret access key", "UPLOAD_AWS_SECRET_ACCESS_KEY")
	if err != nil {
		return nil, err
	}

	// Initialize the session
	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(awsRegion),
		Credentials: credentials.NewStaticCredentials(awsAccessKeyID, awsSecretAccessKey, ""),
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not create AWS session")
	}

	uploadPartSize, err := env.GetBytesEnv("upload part size", "UPLOAD_PART_SIZE", 5*datasize.MB)
	if err != nil {
		return nil, err
	}

	// Initialize the uploader
	uploader := s3manager.NewUploader(sess, func(u *s3manager.Uploader) {
		u.PartSize = int64(uploadPartSize.Bytes())
		u.LeavePartsOnError = false
	})

	s3Bucket, err := env.GetEnv("upload S3 bucket", "UPLOAD_S3_BUCKET")
	if err != nil {
		return nil, err
	}

	return &Provider{
		maxBytes: int64(maxBytes.Bytes()),
		uploader: uploader,
		bucket:   s3Bucket,
		logger:   logger.With().Str("component", "s3").Logger(),
	}, nil
}

// MaxBytes gets the max number of bytes that can be uploaded at once
func (p *Provider) MaxBytes() int64 {
	return p.maxBytes
}

// Upload streams a food image to S3 under a random name,
// returning the URL of the file once uploaded
func (p *Provider) Upload(ctx context.Context, part io.Reader, ext string, mime string) (string, error) {
	fileID, err := ksuid.NewRandom()
	if err != nil {
		return "", err
	}
	key := objectKey(fileID, ext)
	p.logger.Info().Str("key", key).Str("mime", mime).Msg("uploading file")

	result, err := p.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        part,
		ContentType: aws.String(mime),
	})
	if err != nil {
		return "", errors.Wrapf(err, "could not upload '%s'", key)
	}

	// Return the URL of the object once uploaded
	return result.Location, nil
}

func objectKey(fileID ksuid.KSUID, ext string) string {
	return fmt.Sprintf("%s/%s.%s", keyPrefix, fileID, strings.TrimPrefix(ext, "."))
}
