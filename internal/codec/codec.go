package codec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"gocv.io/x/gocv"
)

var (
	// ErrInvalidDataURL is returned for empty or non-base64 image payloads
	ErrInvalidDataURL = errors.New("invalid image data URL")
	// ErrUndecodableImage is returned when the payload is not a supported image
	ErrUndecodableImage = errors.New("failed to decode image")
)

// DecodeDataURL returns the bytes of a "data:<mime>;base64,<payload>" URL.
// A bare base64 payload without the header is accepted too.
func DecodeDataURL(dataURL string) ([]byte, error) {
	payload := dataURL
	if i := strings.IndexByte(dataURL, ','); i >= 0 {
		payload = dataURL[i+1:]
	}
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, ErrInvalidDataURL
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	return data, nil
}

// DecodeImage decodes an encoded image into a BGR frame
func DecodeImage(data []byte) (gocv.Mat, error) {
	if len(data) == 0 {
		return gocv.Mat{}, ErrUndecodableImage
	}

	img, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("%w: %v", ErrUndecodableImage, err)
	}
	if img.Empty() {
		img.Close()
		return gocv.Mat{}, ErrUndecodableImage
	}
	return img, nil
}

// DecodeFrame decodes a data URL straight into a BGR frame
func DecodeFrame(dataURL string) (gocv.Mat, error) {
	data, err := DecodeDataURL(dataURL)
	if err != nil {
		return gocv.Mat{}, err
	}
	return DecodeImage(data)
}

// EncodeJPEG encodes img as JPEG at the given quality (1-100)
func EncodeJPEG(img gocv.Mat, quality int) ([]byte, error) {
	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, img, []int{gocv.IMWriteJpegQuality, quality})
	if err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	defer buf.Close()

	// The buffer aliases native memory released by Close
	return bytes.Clone(buf.GetBytes()), nil
}

// EncodeBase64JPEG encodes img as base64 JPEG without a data URL header
func EncodeBase64JPEG(img gocv.Mat, quality int) (string, error) {
	data, err := EncodeJPEG(img, quality)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
