package screenshot

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/sirupsen/logrus/hooks/test"
)

var filenamePattern = regexp.MustCompile(`^screenshot_1700000000_[0-9A-HJKMNP-TV-Z]{26}\.png$`)

func fixedNow() time.Time {
	return time.Unix(1700000000, 0)
}

func TestFilename(t *testing.T) {
	a := Filename(fixedNow())
	b := Filename(fixedNow())

	if !filenamePattern.MatchString(a) {
		t.Errorf("Unexpected filename %q", a)
	}
	if a == b {
		t.Error("Expected unique filenames within the same second")
	}
}

func TestDiskStore(t *testing.T) {
	logger, _ := test.NewNullLogger()
	dir := filepath.Join(t.TempDir(), "screenshots")
	store := NewDiskStore(dir, logger)
	store.now = fixedNow

	name, err := store.Save(context.Background(), []byte("png bytes"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !filenamePattern.MatchString(name) {
		t.Errorf("Unexpected filename %q", name)
	}

	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("Expected screenshot on disk: %v", err)
	}
	if string(data) != "png bytes" {
		t.Errorf("Expected stored bytes, got %q", data)
	}

	if _, err := store.Save(context.Background(), nil); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("Expected ErrEmptyImage, got %v", err)
	}
}

func TestDiskStoreCanceled(t *testing.T) {
	logger, _ := test.NewNullLogger()
	store := NewDiskStore(t.TempDir(), logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Save(ctx, []byte("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

// fakeUploader records uploads instead of talking to S3
type fakeUploader struct {
	s3manageriface.UploaderAPI
	input *s3manager.UploadInput
	body  []byte
	err   error
}

func (u *fakeUploader) UploadWithContext(ctx aws.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	if u.err != nil {
		return nil, u.err
	}
	u.input = input
	body, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	u.body = body
	return &s3manager.UploadOutput{Location: "https://bucket.s3.amazonaws.com/" + aws.StringValue(input.Key)}, nil
}

func TestS3Store(t *testing.T) {
	logger, _ := test.NewNullLogger()
	up := &fakeUploader{}
	store := NewS3StoreWithUploader(up, "captures", "screenshots/", logger)
	store.now = fixedNow

	name, err := store.Save(context.Background(), []byte("png bytes"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if aws.StringValue(up.input.Bucket) != "captures" {
		t.Errorf("Expected bucket captures, got %s", aws.StringValue(up.input.Bucket))
	}
	if key := aws.StringValue(up.input.Key); key != "screenshots/"+name {
		t.Errorf("Expected key screenshots/%s, got %s", name, key)
	}
	if !bytes.Equal(up.body, []byte("png bytes")) {
		t.Errorf("Expected uploaded bytes, got %q", up.body)
	}

	up.err = errors.New("access denied")
	if _, err := store.Save(context.Background(), []byte("x")); !errors.Is(err, up.err) {
		t.Errorf("Expected wrapped upload error, got %v", err)
	}
	if _, err := store.Save(context.Background(), nil); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("Expected ErrEmptyImage, got %v", err)
	}
}
