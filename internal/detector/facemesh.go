package detector

import (
	"fmt"
	"image"
	"math"

	"github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"

	"github.com/dudu/snapfilter/internal/inference"
	"github.com/dudu/snapfilter/internal/landmarks"
)

// FaceMesh predicts the 468-point MediaPipe face mesh for a detected face
type FaceMesh struct {
	session   *inference.Session
	inputSize int
	expansion float32
}

// NewFaceMesh creates a face mesh landmark model.
// The model takes a 1x3x192x192 RGB crop in [0, 1] and emits 1404 values
// (x, y, z per point in crop pixels) plus a face presence logit.
func NewFaceMesh(modelPath string, opts inference.Options, log logrus.FieldLogger) (*FaceMesh, error) {
	inputNames := []string{"input_1"}
	outputNames := []string{"conv2d_21", "conv2d_31"}

	session, err := inference.NewSession(modelPath, inputNames, outputNames, opts, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create face mesh session: %w", err)
	}

	return &FaceMesh{
		session:   session,
		inputSize: 192,
		expansion: 1.5,
	}, nil
}

// Detect runs the mesh model on the face crop and sets face.Mesh (normalized
// to the image size) and face.Presence
func (m *FaceMesh) Detect(img gocv.Mat, face *Face) error {
	fwd := cropTransform(*face, m.inputSize, m.expansion)

	M := fwd.mat()
	aligned := gocv.NewMat()
	defer aligned.Close()
	gocv.WarpAffine(img, &aligned, M, image.Pt(m.inputSize, m.inputSize))
	M.Close()

	// BGR to RGB, scaled to [0, 1], HWC to CHW
	blob := gocv.BlobFromImage(aligned, 1.0/255.0, image.Pt(m.inputSize, m.inputSize),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	inputTensor, err := ort.NewTensor(
		ort.NewShape(1, 3, int64(m.inputSize), int64(m.inputSize)),
		bytesToFloat32(blob.ToBytes()),
	)
	if err != nil {
		return fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	meshTensor, err := inference.CreateEmptyTensor[float32]([]int64{1, 1, 1, landmarks.MeshSize * 3})
	if err != nil {
		return fmt.Errorf("failed to create output tensor: %w", err)
	}
	defer meshTensor.Destroy()

	presenceTensor, err := inference.CreateEmptyTensor[float32]([]int64{1, 1, 1, 1})
	if err != nil {
		return fmt.Errorf("failed to create output tensor: %w", err)
	}
	defer presenceTensor.Destroy()

	if err := m.session.Run([]ort.Value{inputTensor}, []ort.Value{meshTensor, presenceTensor}); err != nil {
		return fmt.Errorf("face mesh inference failed: %w", err)
	}

	inv, ok := fwd.invert()
	if !ok {
		return fmt.Errorf("degenerate face crop for box %+v", face.BoundingBox)
	}

	face.Mesh = projectMesh(meshTensor.GetData(), inv, img.Cols(), img.Rows())
	face.Presence = sigmoid(presenceTensor.GetData()[0])

	return nil
}

// Close releases model resources
func (m *FaceMesh) Close() error {
	return m.session.Destroy()
}

// affine is a 2x3 row-major transform: u = a*x + b*y + c, v = d*x + e*y + f
type affine [6]float64

func (t affine) apply(x, y float64) (float64, float64) {
	return t[0]*x + t[1]*y + t[2], t[3]*x + t[4]*y + t[5]
}

func (t affine) invert() (affine, bool) {
	det := t[0]*t[4] - t[1]*t[3]
	if det == 0 {
		return affine{}, false
	}
	a, b := t[4]/det, -t[1]/det
	d, e := -t[3]/det, t[0]/det
	return affine{
		a, b, -(a*t[2] + b*t[5]),
		d, e, -(d*t[2] + e*t[5]),
	}, true
}

func (t affine) mat() gocv.Mat {
	M := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV64F)
	for i, v := range t {
		M.SetDoubleAt(i/3, i%3, v)
	}
	return M
}

// cropTransform maps image pixels into a square crop of side inputSize
// centered on the face box, expanded by expansion and rotated so the eye
// line is level
func cropTransform(face Face, inputSize int, expansion float32) affine {
	box := face.BoundingBox
	center := box.Center()
	side := float64(max(box.Width(), box.Height()) * expansion)
	if side <= 0 {
		return affine{}
	}

	scale := float64(inputSize) / side
	theta := face.Keypoints.Roll() * math.Pi / 180
	alpha := scale * math.Cos(theta)
	beta := scale * math.Sin(theta)

	cx, cy := float64(center.X), float64(center.Y)
	half := float64(inputSize) / 2

	return affine{
		alpha, beta, half - alpha*cx - beta*cy,
		-beta, alpha, half + beta*cx - alpha*cy,
	}
}

// projectMesh maps raw crop-space mesh output back into the image and
// normalizes it to [0, 1] by the image dimensions
func projectMesh(raw []float32, inv affine, width, height int) landmarks.Set {
	n := len(raw) / 3
	set := make(landmarks.Set, n)
	for i := 0; i < n; i++ {
		x, y := inv.apply(float64(raw[i*3]), float64(raw[i*3+1]))
		set[i].X = x / float64(width)
		set[i].Y = y / float64(height)
	}
	return set
}
