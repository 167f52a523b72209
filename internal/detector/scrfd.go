package detector

import (
	"fmt"
	"image"
	"math"

	"github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"

	"github.com/dudu/snapfilter/internal/inference"
)

// SCRFD implements the SCRFD face detector
type SCRFD struct {
	session        *inference.Session
	inputSize      int
	confThreshold  float32
	nmsThreshold   float32
	maxFaces       int
	featureStrides []int
	numAnchors     int
}

// NewSCRFD creates a new SCRFD detector returning at most maxFaces faces
// (maxFaces <= 0 for no limit)
func NewSCRFD(modelPath string, inputSize int, confThreshold, nmsThreshold float32, maxFaces int, opts inference.Options, log logrus.FieldLogger) (*SCRFD, error) {
	// SCRFD has 1 input and 9 outputs (3 levels × 3 outputs each: score, bbox, kps)
	inputNames := []string{"input.1"}
	outputNames := []string{
		"score_8", "score_16", "score_32",
		"bbox_8", "bbox_16", "bbox_32",
		"kps_8", "kps_16", "kps_32",
	}

	session, err := inference.NewSession(modelPath, inputNames, outputNames, opts, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create SCRFD session: %w", err)
	}

	return &SCRFD{
		session:        session,
		inputSize:      inputSize,
		confThreshold:  confThreshold,
		nmsThreshold:   nmsThreshold,
		maxFaces:       maxFaces,
		featureStrides: []int{8, 16, 32},
		numAnchors:     2, // anchors per position
	}, nil
}

// Detect finds faces in an image, highest score first
func (s *SCRFD) Detect(img gocv.Mat) ([]Face, error) {
	origHeight := img.Rows()
	origWidth := img.Cols()

	inputBlob, scale := s.preprocess(img)
	defer inputBlob.Close()

	floatData := bytesToFloat32(inputBlob.ToBytes())

	inputTensor, err := ort.NewTensor(
		ort.NewShape(1, 3, int64(s.inputSize), int64(s.inputSize)),
		floatData,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	outputs := make([]ort.Value, 0, 9)
	outputTensors := make([]*ort.Tensor[float32], 0, 9)
	defer func() {
		for _, t := range outputTensors {
			t.Destroy()
		}
	}()

	// Outputs are ordered scores, boxes, keypoints; each group by stride
	for _, width := range []int64{1, 4, 10} {
		for _, stride := range s.featureStrides {
			fm := int64(s.inputSize / stride)
			t, err := inference.CreateEmptyTensor[float32]([]int64{fm * fm * int64(s.numAnchors), width})
			if err != nil {
				return nil, fmt.Errorf("failed to create output tensor: %w", err)
			}
			outputs = append(outputs, t)
			outputTensors = append(outputTensors, t)
		}
	}

	if err := s.session.Run([]ort.Value{inputTensor}, outputs); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	data := make([][]float32, len(outputTensors))
	for i, t := range outputTensors {
		data[i] = t.GetData()
	}

	faces := s.postprocess(data, scale, origWidth, origHeight)

	return suppress(faces, s.nmsThreshold, s.maxFaces), nil
}

// preprocess letterboxes the image into the model input and normalizes it
func (s *SCRFD) preprocess(img gocv.Mat) (gocv.Mat, float32) {
	height := img.Rows()
	width := img.Cols()

	scale := float32(s.inputSize) / float32(max(height, width))

	newWidth := int(float32(width) * scale)
	newHeight := int(float32(height) * scale)

	resized := gocv.NewMat()
	gocv.Resize(img, &resized, image.Pt(newWidth, newHeight), 0, 0, gocv.InterpolationLinear)

	// Pad bottom/right so the origin stays fixed
	padded := gocv.NewMatWithSize(s.inputSize, s.inputSize, gocv.MatTypeCV8UC3)
	padded.SetTo(gocv.NewScalar(0, 0, 0, 0))

	roi := padded.Region(image.Rect(0, 0, newWidth, newHeight))
	resized.CopyTo(&roi)
	roi.Close()
	resized.Close()

	rgb := gocv.NewMat()
	gocv.CvtColor(padded, &rgb, gocv.ColorBGRToRGB)
	padded.Close()

	blob := gocv.NewMat()
	rgb.ConvertTo(&blob, gocv.MatTypeCV32FC3)
	rgb.Close()

	// (x - 127.5) / 128.0
	gocv.AddWeighted(blob, 1.0/128.0, blob, 0, -127.5/128.0, &blob)

	// HWC to CHW
	blobNCHW := gocv.BlobFromImage(blob, 1.0, image.Pt(s.inputSize, s.inputSize),
		gocv.NewScalar(0, 0, 0, 0), false, false)
	blob.Close()

	return blobNCHW, scale
}

// postprocess decodes raw output data (scores, boxes, keypoints per stride)
// into faces in source image coordinates
func (s *SCRFD) postprocess(outputs [][]float32, scale float32, origWidth, origHeight int) []Face {
	var faces []Face
	levels := len(s.featureStrides)

	for level, stride := range s.featureStrides {
		fmSize := s.inputSize / stride
		st := float32(stride)

		scoreData := outputs[level]
		bboxData := outputs[level+levels]
		kpsData := outputs[level+2*levels]

		anchorIdx := 0
		for y := 0; y < fmSize; y++ {
			for x := 0; x < fmSize; x++ {
				for a := 0; a < s.numAnchors; a++ {
					score := sigmoid(scoreData[anchorIdx])

					if score > s.confThreshold {
						cx := (float32(x) + 0.5) * st
						cy := (float32(y) + 0.5) * st

						// Boxes are distances from the anchor center to each edge
						b := bboxData[anchorIdx*4 : anchorIdx*4+4]
						box := BoundingBox{
							X1: clamp((cx-b[0]*st)/scale, 0, float32(origWidth)),
							Y1: clamp((cy-b[1]*st)/scale, 0, float32(origHeight)),
							X2: clamp((cx+b[2]*st)/scale, 0, float32(origWidth)),
							Y2: clamp((cy+b[3]*st)/scale, 0, float32(origHeight)),
						}

						k := kpsData[anchorIdx*10 : anchorIdx*10+10]
						kp := func(i int) Point {
							return Point{(cx + k[i*2]*st) / scale, (cy + k[i*2+1]*st) / scale}
						}

						faces = append(faces, Face{
							BoundingBox: box,
							Keypoints: Keypoints{
								LeftEye:    kp(0),
								RightEye:   kp(1),
								Nose:       kp(2),
								LeftMouth:  kp(3),
								RightMouth: kp(4),
							},
							Score: score,
						})
					}
					anchorIdx++
				}
			}
		}
	}

	return faces
}

// Close releases detector resources
func (s *SCRFD) Close() error {
	return s.session.Destroy()
}

func sigmoid(x float32) float32 {
	return 1.0 / (1.0 + float32(math.Exp(float64(-x))))
}

func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}

func bytesToFloat32(data []byte) []float32 {
	result := make([]float32, len(data)/4)
	for i := range result {
		bits := uint32(data[i*4]) | uint32(data[i*4+1])<<8 | uint32(data[i*4+2])<<16 | uint32(data[i*4+3])<<24
		result[i] = math.Float32frombits(bits)
	}
	return result
}
