package ui

import (
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/me/examdesk/internal/listing"
	"github.com/me/examdesk/pkg/model"
)

// HandleImageList renders the gallery, optionally narrowed to one
// category (?category=).
func (ui *UI) HandleImageList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	images := listing.NewImages(ui.client, ui.pageSize, ui.logger)

	st, err := images.FetchPage(ctx, model.ListQuery{Page: queryPage(r), PageSize: ui.pageSize})
	if model.IsUnauthorized(err) {
		ui.renderError(w, r, "Session rejected", err)
		return
	}
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	categories := imageCategories(st.Items)
	if err == nil && category != "" {
		st, _ = images.Search(ctx, category)
	}

	extra := url.Values{}
	if category != "" {
		extra.Set("category", category)
	}
	data := ui.page(r, "Images")
	data["Images"] = st
	data["Category"] = category
	data["Categories"] = categories
	data["Pagination"] = pagination(st.Pagination, extra)
	ui.render(w, "images", data)
}

func imageCategories(images []model.Image) []string {
	seen := map[string]bool{}
	var out []string
	for _, img := range images {
		if !seen[img.Category] {
			seen[img.Category] = true
			out = append(out, img.Category)
		}
	}
	sort.Strings(out)
	return out
}

// HandleImageDelete deletes the selected images (one or many).
func (ui *UI) HandleImageDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ui.redirect(w, r, "/images", "", "Invalid form")
		return
	}
	ids := r.Form["public_id"]

	var err error
	switch len(ids) {
	case 0:
		ui.redirect(w, r, "/images", "", "No images selected")
		return
	case 1:
		_, err = listing.NewImages(ui.client, ui.pageSize, ui.logger).DeleteItem(r.Context(), ids[0])
	default:
		err = ui.client.DeleteImages(r.Context(), ids)
	}
	if err != nil {
		if model.IsUnauthorized(err) {
			ui.renderError(w, r, "Session rejected", err)
			return
		}
		ui.redirect(w, r, "/images", "", "Error deleting images: "+errorText(err))
		return
	}
	msg := "Image deleted successfully"
	if len(ids) > 1 {
		msg = "Selected images deleted successfully"
	}
	ui.redirect(w, r, "/images", msg, "")
}
