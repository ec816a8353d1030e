package model

import "strings"

// UncategorizedImage is the category of images whose public id has no
// category segment.
const UncategorizedImage = "Uncategorized"

// Image is an uploaded image held by the media backend.
type Image struct {
	PublicID  string `json:"public_id"`
	URL       string `json:"url,omitempty"`
	SecureURL string `json:"secure_url,omitempty"`
	Format    string `json:"format,omitempty"`
	Bytes     int64  `json:"bytes,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	Category  string `json:"category,omitempty"`
}

// Key returns the public id, which the delete endpoint expects.
func (i Image) Key() string {
	return i.PublicID
}

// CategoryFromPublicID returns the second path segment of a public id
// ("folder/category/name"), or UncategorizedImage.
func CategoryFromPublicID(publicID string) string {
	parts := strings.Split(publicID, "/")
	if len(parts) > 1 && parts[1] != "" {
		return parts[1]
	}
	return UncategorizedImage
}

// ImageUpload is a bulk image upload request.
type ImageUpload struct {
	Category string   `validate:"required"`
	Paths    []string `validate:"min=1,dive,required"`
}
