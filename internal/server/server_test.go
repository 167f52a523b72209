package server

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus/hooks/test"
	"gocv.io/x/gocv"

	"github.com/dudu/snapfilter/internal/config"
	"github.com/dudu/snapfilter/internal/pipeline"
)

// fakeProcessor reports a fixed face count and records the filter it was given
type fakeProcessor struct {
	faces  int
	err    error
	filter string
	calls  int
}

func (p *fakeProcessor) Process(frame *gocv.Mat, filterName string) (pipeline.Result, error) {
	p.calls++
	p.filter = filterName
	if p.err != nil {
		return pipeline.Result{}, p.err
	}
	return pipeline.Result{Faces: p.faces}, nil
}

// fakeStore keeps the last saved screenshot in memory
type fakeStore struct {
	saved []byte
	err   error
}

func (s *fakeStore) Save(ctx context.Context, image []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.saved = image
	return "screenshot_1700000000_01HF0000000000000000000000.png", nil
}

func newTestServer(t *testing.T, proc *fakeProcessor, store *fakeStore, opts ...ServerOption) *Server {
	t.Helper()
	logger, _ := test.NewNullLogger()

	base := []ServerOption{
		WithFiber(config.NewFiber()),
		WithLogger(logger),
		WithValidator(config.NewValidator()),
		WithProcessor(proc),
		WithScreenshotStore(store),
	}
	srv, err := NewServer(append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return srv
}

func frameDataURL(t *testing.T) string {
	t.Helper()
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(90, 90, 90, 0), 48, 64, gocv.MatTypeCV8UC3)
	defer img.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, img)
	if err != nil {
		t.Fatalf("Failed to encode fixture: %v", err)
	}
	defer buf.Close()

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.GetBytes())
}

func do(t *testing.T, srv *Server, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := jsoniter.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = strings.NewReader(string(data))
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.App().Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}

	out := map[string]interface{}{}
	if len(raw) > 0 {
		if err := jsoniter.Unmarshal(raw, &out); err != nil {
			t.Fatalf("Expected JSON body, got %q", raw)
		}
	}
	return resp.StatusCode, out
}

func TestHealthAndFilters(t *testing.T) {
	srv := newTestServer(t, &fakeProcessor{}, &fakeStore{})

	status, body := do(t, srv, http.MethodGet, "/health", nil)
	if status != http.StatusOK || body["status"] != "ok" {
		t.Errorf("Expected healthy response, got %d %v", status, body)
	}

	status, body = do(t, srv, http.MethodGet, "/filters", nil)
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	filters, _ := body["filters"].([]interface{})
	if len(filters) != 6 {
		t.Errorf("Expected 6 filters, got %v", body["filters"])
	}
}

func TestProcessFrame(t *testing.T) {
	proc := &fakeProcessor{faces: 2}
	srv := newTestServer(t, proc, &fakeStore{})

	status, body := do(t, srv, http.MethodPost, "/process_frame", FrameRequest{
		Image:  frameDataURL(t),
		Filter: "crown",
	})

	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d %v", status, body)
	}
	if proc.filter != "crown" {
		t.Errorf("Expected filter crown, got %q", proc.filter)
	}
	if body["num_faces"] != float64(2) || body["landmarks_detected"] != true {
		t.Errorf("Unexpected face fields: %v", body)
	}

	encoded, _ := body["image"].(string)
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		t.Error("Expected base64 JPEG image in response")
	}
}

func TestProcessFrameBadInput(t *testing.T) {
	tests := []struct {
		name  string
		image string
		want  string
	}{
		{"missing image", "", "No image received"},
		{"not base64", "data:image/png;base64,@@@", "Failed to decode image"},
		{"not an image", "data:image/png;base64,aGVsbG8=", "Failed to decode image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc := &fakeProcessor{}
			srv := newTestServer(t, proc, &fakeStore{})

			status, body := do(t, srv, http.MethodPost, "/process_frame", FrameRequest{Image: tt.image})

			if status != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", status)
			}
			if body["error"] != tt.want {
				t.Errorf("Expected error %q, got %v", tt.want, body["error"])
			}
			if proc.calls != 0 {
				t.Error("Expected processor not to run")
			}
		})
	}
}

func TestProcessFrameInternalError(t *testing.T) {
	proc := &fakeProcessor{err: errors.New("session exploded")}

	// 1. Details hidden by default
	srv := newTestServer(t, proc, &fakeStore{})
	status, body := do(t, srv, http.MethodPost, "/process_frame", FrameRequest{Image: frameDataURL(t)})
	if status != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", status)
	}
	if _, ok := body["details"]; ok {
		t.Errorf("Expected no details outside debug mode, got %v", body)
	}

	// 2. Details shown in debug mode
	srv = newTestServer(t, proc, &fakeStore{}, WithDebug(true))
	_, body = do(t, srv, http.MethodPost, "/process_frame", FrameRequest{Image: frameDataURL(t)})
	if body["details"] != "session exploded" {
		t.Errorf("Expected details in debug mode, got %v", body)
	}
}

func TestProcessFrameRateLimited(t *testing.T) {
	srv := newTestServer(t, &fakeProcessor{}, &fakeStore{}, WithRateLimit(1))
	frame := frameDataURL(t)

	if status, _ := do(t, srv, http.MethodPost, "/process_frame", FrameRequest{Image: frame}); status != http.StatusOK {
		t.Fatalf("Expected first frame to pass, got %d", status)
	}
	if status, _ := do(t, srv, http.MethodPost, "/process_frame", FrameRequest{Image: frame}); status != http.StatusTooManyRequests {
		t.Errorf("Expected 429 for burst overflow, got %d", status)
	}
}

func TestScreenshot(t *testing.T) {
	store := &fakeStore{}
	srv := newTestServer(t, &fakeProcessor{}, store)

	status, body := do(t, srv, http.MethodPost, "/screenshot", ScreenshotRequest{Image: "data:image/png;base64,aGVsbG8="})
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d %v", status, body)
	}
	if body["success"] != true || !strings.HasPrefix(body["filename"].(string), "screenshot_") {
		t.Errorf("Unexpected response %v", body)
	}
	if string(store.saved) != "hello" {
		t.Errorf("Expected decoded bytes to be stored, got %q", store.saved)
	}

	status, body = do(t, srv, http.MethodPost, "/screenshot", ScreenshotRequest{})
	if status != http.StatusBadRequest || body["error"] != "No image data provided" {
		t.Errorf("Expected 400 for missing image, got %d %v", status, body)
	}

	store.err = errors.New("disk full")
	status, _ = do(t, srv, http.MethodPost, "/screenshot", ScreenshotRequest{Image: "aGVsbG8="})
	if status != http.StatusInternalServerError {
		t.Errorf("Expected 500 for store failure, got %d", status)
	}
}

func TestWebSocketRequiresUpgrade(t *testing.T) {
	srv := newTestServer(t, &fakeProcessor{}, &fakeStore{})

	req := httptest.NewRequest(http.MethodGet, "/ws/frames?filter=hat", nil)
	resp, err := srv.App().Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUpgradeRequired {
		t.Errorf("Expected 426, got %d", resp.StatusCode)
	}
}

func TestNewServerRequiresDependencies(t *testing.T) {
	logger, _ := test.NewNullLogger()

	if _, err := NewServer(WithLogger(logger)); err == nil {
		t.Error("Expected error without fiber app")
	}
	if _, err := NewServer(WithFiber(config.NewFiber()), WithLogger(logger), WithValidator(config.NewValidator())); err == nil {
		t.Error("Expected error without processor")
	}
	if _, err := NewServer(WithJPEGQuality(0)); err == nil {
		t.Error("Expected error for invalid JPEG quality")
	}
}
