package server

// FrameRequest carries one captured frame as a data URL
type FrameRequest struct {
	Image  string `json:"image" validate:"required"`
	Filter string `json:"filter" validate:"omitempty,max=64"`
}

// FrameResponse carries the processed frame as base64 JPEG
type FrameResponse struct {
	Image             string `json:"image"`
	LandmarksDetected bool   `json:"landmarks_detected"`
	NumFaces          int    `json:"num_faces"`
}

// ScreenshotRequest carries a captured image as a data URL
type ScreenshotRequest struct {
	Image string `json:"image" validate:"required"`
}

// ScreenshotResponse names the stored screenshot
type ScreenshotResponse struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
}

// FiltersResponse lists the recognized filter kinds
type FiltersResponse struct {
	Filters []string `json:"filters"`
}

// ErrorResponse is returned for every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
