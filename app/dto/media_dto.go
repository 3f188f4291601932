package dto

import "io"

// UploadMediaRequest contains upload details passed from handler to flow.
type UploadMediaRequest struct {
	AccountID        uint      `json:"-"`
	OriginalFilename string    `json:"-"`
	FileSize         int64     `json:"-"`
	ContentType      string    `json:"-"`
	File             io.Reader `json:"-"`
}

// UploadMediaResponse represents a successful photo upload response.
type UploadMediaResponse struct {
	Message          string `json:"message"`
	PhotoID          string `json:"photo_id"`
	URL              string `json:"url"`
	ThumbnailURL     string `json:"thumbnail_url,omitempty"`
	MimeType         string `json:"mime_type"`
	SizeBytes        int64  `json:"size_bytes"`
	OriginalFilename string `json:"original_filename"`
	CreatedAt        string `json:"created_at"`
}
