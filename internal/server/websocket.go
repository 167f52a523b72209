package server

import (
	"time"

	"github.com/gofiber/websocket/v2"
	jsoniter "github.com/json-iterator/go"

	"github.com/dudu/snapfilter/internal/codec"
)

const (
	maxReadTimeout = 60 * time.Second
	writeTimeout   = 10 * time.Second
)

// handleFrames streams frames over a websocket. Binary messages are encoded
// images filtered with the current filter. Text messages are JSON
// FrameRequests: the filter field switches the current filter and a
// non-empty image field is processed like a binary frame.
func (s *Server) handleFrames(c *websocket.Conn) {
	filterName := c.Query("filter")
	log := s.log.WithField("remote", c.RemoteAddr().String())

	log.Info("Frame stream connected")
	defer log.Info("Frame stream disconnected")

	for {
		if err := c.SetReadDeadline(time.Now().Add(maxReadTimeout)); err != nil {
			log.Errorf("Error setting read deadline: %v", err)
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Errorf("Frame stream error: %v", err)
			}
			break
		}

		var data []byte
		switch messageType {
		case websocket.BinaryMessage:
			data = message
		case websocket.TextMessage:
			var req FrameRequest
			if err := jsoniter.Unmarshal(message, &req); err != nil {
				if !s.writeJSON(c, ErrorResponse{Error: "Invalid request body"}) {
					return
				}
				continue
			}
			filterName = req.Filter
			if req.Image == "" {
				continue
			}
			if data, err = codec.DecodeDataURL(req.Image); err != nil {
				if !s.writeJSON(c, ErrorResponse{Error: "Failed to decode image"}) {
					return
				}
				continue
			}
		default:
			log.Warnf("Received unexpected message type: %d", messageType)
			continue
		}

		if !s.limiter.Allow() {
			if !s.writeJSON(c, ErrorResponse{Error: errRateLimited.Error()}) {
				return
			}
			continue
		}

		resp, err := s.runFrame(data, filterName)
		if err != nil {
			log.Errorf("Error processing frame: %v", err)
			errResp := ErrorResponse{Error: "Failed to process frame. Please try again."}
			if s.debug {
				errResp.Details = err.Error()
			}
			if !s.writeJSON(c, errResp) {
				return
			}
			continue
		}

		if !s.writeJSON(c, resp) {
			return
		}
	}
}

// writeJSON sends v with a write deadline and reports whether the
// connection is still usable
func (s *Server) writeJSON(c *websocket.Conn, v interface{}) bool {
	if err := c.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		s.log.Errorf("Error setting write deadline: %v", err)
		return false
	}
	if err := c.WriteJSON(v); err != nil {
		s.log.Errorf("Error writing JSON response: %v", err)
		return false
	}
	if err := c.SetWriteDeadline(time.Time{}); err != nil {
		s.log.Errorf("Error resetting write deadline: %v", err)
		return false
	}
	return true
}
