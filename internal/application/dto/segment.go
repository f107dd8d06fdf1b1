package dto

import "javasegment/internal/domain/valueobject"

// SegmentRequest asks for the method segments of one Java source file.
type SegmentRequest struct {
	Source string `json:"source"`
	Path   string `json:"path,omitempty"`
}

// SegmentResponse lists the segments of one file in source order.
type SegmentResponse struct {
	Path     string                `json:"path,omitempty" yaml:"path,omitempty"`
	Total    int                   `json:"total"          yaml:"total"`
	Segments []valueobject.Segment `json:"segments"       yaml:"segments"`
}

// NewSegmentResponse wraps segments, never returning a nil list.
func NewSegmentResponse(path string, segments []valueobject.Segment) SegmentResponse {
	if segments == nil {
		segments = []valueobject.Segment{}
	}
	return SegmentResponse{Path: path, Total: len(segments), Segments: segments}
}
