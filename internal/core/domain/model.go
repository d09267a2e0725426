package domain

import "time"

// Submission is a single upload waiting to be sent to the generation endpoint.
type Submission struct {
	Filename    string
	ContentType string
	Image       []byte
	Prompt      string
	UserID      string
}

// GeneratedImage is what the endpoint returned. Either Data is set (raw image bytes)
// or Text holds the JSON result of an envelope response.
type GeneratedImage struct {
	Data        []byte
	ContentType string
	Text        string
}

// IsImage reports whether the result carries image bytes.
func (g GeneratedImage) IsImage() bool {
	return len(g.Data) > 0
}

// Extension returns the file extension matching the content type, defaulting to .png.
func (g GeneratedImage) Extension() string {
	switch g.ContentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}

// UsageRecord is the persisted per-user daily counter.
type UsageRecord struct {
	Count int    `json:"count"`
	Date  string `json:"date"`
}

// QuotaStatus is the readout shown to the user.
type QuotaStatus struct {
	UserID    string
	Used      int
	Limit     int
	Date      string
	Unlimited bool
}

// Remaining returns how many generations are left today.
func (q QuotaStatus) Remaining() int {
	if q.Unlimited {
		return -1
	}
	if q.Used >= q.Limit {
		return 0
	}
	return q.Limit - q.Used
}

// RecordInfo is the subset of the remote user record the app cares about.
type RecordInfo struct {
	ID      string
	Limit   int
	Expires time.Time
}

// ModelInfo describes the models the endpoint advertises.
type ModelInfo struct {
	Supported []string `json:"supported_models"`
	Current   string   `json:"current_model"`
	Note      string   `json:"note"`
}
