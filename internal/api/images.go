package api

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/me/examdesk/pkg/model"
)

// imageExts are the upload formats the media backend accepts.
var imageExts = map[string]bool{".jpeg": true, ".jpg": true, ".png": true}

// ListImages fetches all images and derives each one's category from its
// public id.
func (c *Client) ListImages(ctx context.Context) ([]model.Image, error) {
	var out struct {
		Images []model.Image `json:"images"`
	}
	if err := c.call(ctx, "list images", http.MethodGet, "/get-images", true, nil, &out); err != nil {
		return nil, err
	}
	for i := range out.Images {
		out.Images[i].Category = model.CategoryFromPublicID(out.Images[i].PublicID)
	}
	return out.Images, nil
}

// DeleteImage deletes one image.
func (c *Client) DeleteImage(ctx context.Context, publicID string) error {
	const op = "delete image"
	if publicID == "" {
		return model.NewValidationError(op, "public id is required")
	}
	return c.call(ctx, op, http.MethodDelete, "/delete-images", true, map[string]string{"public_id": publicID}, nil)
}

// DeleteImages deletes several images in one request.
func (c *Client) DeleteImages(ctx context.Context, publicIDs []string) error {
	const op = "delete images"
	if len(publicIDs) == 0 {
		return model.NewValidationError(op, "select at least one image")
	}
	return c.call(ctx, op, http.MethodDelete, "/delete-images", true, map[string][]string{"public_ids": publicIDs}, nil)
}

// UploadImages uploads images into a category and returns the backend's
// confirmation message.
func (c *Client) UploadImages(ctx context.Context, up model.ImageUpload) (string, error) {
	const op = "upload images"
	if len(up.Paths) == 0 {
		return "", model.NewValidationError(op, "please add at least one image")
	}
	if up.Category == "" {
		return "", model.NewValidationError(op, "please select an image category")
	}
	if err := c.check(op, up); err != nil {
		return "", err
	}
	files := make([]formFile, 0, len(up.Paths))
	for _, p := range up.Paths {
		if !imageExts[strings.ToLower(filepath.Ext(p))] {
			return "", model.NewValidationError(op, "unsupported image type: "+filepath.Base(p))
		}
		files = append(files, formFile{field: "images", path: p})
	}

	req, err := multipartRequest(op, http.MethodPost, "/bulk-images", [][2]string{{"image_category", up.Category}}, files)
	if err != nil {
		return "", err
	}
	var out struct {
		Message string `json:"message"`
	}
	if err := c.doJSON(ctx, req, &out); err != nil {
		return "", err
	}
	if out.Message == "" {
		out.Message = "Images uploaded successfully!"
	}
	return out.Message, nil
}
