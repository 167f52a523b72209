package screenshot

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

// S3Store uploads screenshots to an S3 bucket under a key prefix
type S3Store struct {
	uploader s3manageriface.UploaderAPI
	bucket   string
	prefix   string
	log      logrus.FieldLogger
	now      func() time.Time
}

// NewS3Store creates a store using the default AWS credential chain
func NewS3Store(bucket, region, prefix string, log logrus.FieldLogger) (*S3Store, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return NewS3StoreWithUploader(s3manager.NewUploader(sess), bucket, prefix, log), nil
}

// NewS3StoreWithUploader creates a store around an existing uploader
func NewS3StoreWithUploader(uploader s3manageriface.UploaderAPI, bucket, prefix string, log logrus.FieldLogger) *S3Store {
	return &S3Store{
		uploader: uploader,
		bucket:   bucket,
		prefix:   prefix,
		log:      log,
		now:      time.Now,
	}
}

// Save uploads image to s3://<bucket>/<prefix><filename>
func (s *S3Store) Save(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", ErrEmptyImage
	}

	name := Filename(s.now())
	key := path.Join(s.prefix, name)

	out, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(image),
		ContentType: aws.String("image/png"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload screenshot: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"location": out.Location,
		"size":     humanize.Bytes(uint64(len(image))),
	}).Info("Screenshot uploaded")

	return name, nil
}
