package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/eknkc/pug"

	"photo-portfolio/pkg/config"
	"photo-portfolio/pkg/models"
	"photo-portfolio/pkg/services"
)

const (
	// jsonCacheControl lets shared caches serve listings for a minute and
	// revalidate in the background for another 30 seconds.
	jsonCacheControl = "public, s-maxage=60, stale-while-revalidate=30"

	unavailableMessage = "Unable to load images. Please try again later."
	emptyMessage       = "No images in this category yet."
	publicDir          = "./public"
)

// Gallery is the set of operations the site needs from the service layer
type Gallery interface {
	GetCategories(ctx context.Context) []models.Category
	GetImages(ctx context.Context, slugPath string) ([]models.ImageObject, error)
	ResolvePath(ctx context.Context, slugPath string) (string, error)
	GetPhotos(ctx context.Context, folderPath, slugPath string) ([]models.Photo, error)
	ManifestPhotos(ctx context.Context, key string) ([]models.Photo, bool, error)
	SubmitContact(ctx context.Context, submission models.ContactSubmission) error
}

// Handler serves the portfolio pages and JSON endpoints
type Handler struct {
	gallery        Gallery
	siteName       string
	viewsDir       string
	contactLimiter *ipRateLimiter
}

// New creates a handler backed by gallery
func New(gallery Gallery, cfg *config.Config) *Handler {
	return &Handler{
		gallery:        gallery,
		siteName:       cfg.SiteName,
		viewsDir:       cfg.ViewsDir,
		contactLimiter: newIPRateLimiter(3, 6, parseTrustedProxies(cfg.TrustedProxies)),
	}
}

// Routes returns the site's request router
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(publicDir))))

	mux.HandleFunc("GET /api/categories", h.CategoriesHandler)
	mux.HandleFunc("GET /api/images/{path...}", h.ImagesHandler)
	mux.HandleFunc("GET /api/photos/{path...}", h.PhotosHandler)
	mux.HandleFunc("POST /api/contact", h.contactLimiter.Limit(h.ContactAPIHandler, rejectJSON))

	mux.HandleFunc("GET /contact", h.ContactPageHandler)
	mux.HandleFunc("POST /contact", h.contactLimiter.Limit(h.ContactFormHandler, h.ContactFormRejected))

	mux.HandleFunc("GET /{$}", h.IndexHandler)
	mux.HandleFunc("GET /{path...}", h.PageHandler)

	return mux
}

// CategoriesHandler returns the category tree as a JSON array
func (h *Handler) CategoriesHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("Generating category list")
	writeCachedJSON(w, r, h.gallery.GetCategories(r.Context()))
}

// ImagesHandler lists the images stored in a category folder. A path that
// resolves to no folder yields an empty list.
func (h *Handler) ImagesHandler(w http.ResponseWriter, r *http.Request) {
	path := r.PathValue("path")

	images, err := h.gallery.GetImages(r.Context(), path)
	if err != nil && !errors.Is(err, services.ErrCategoryNotFound) {
		log.Printf("Error listing images for %s: %v", path, err)
	}
	if images == nil {
		images = []models.ImageObject{}
	}

	writeCachedJSON(w, r, map[string][]models.ImageObject{"images": images})
}

// PhotosHandler returns the manifest photos of a category
func (h *Handler) PhotosHandler(w http.ResponseWriter, r *http.Request) {
	slugPath := strings.ToLower(strings.Trim(r.PathValue("path"), "/"))

	folder, err := h.gallery.ResolvePath(r.Context(), slugPath)
	switch {
	case errors.Is(err, services.ErrCategoryNotFound):
		// The manifest may still list a category that has no storage folder
		photos, ok, err := h.gallery.ManifestPhotos(r.Context(), slugPath)
		if err != nil {
			writeUnavailable(w)
			return
		}
		if !ok {
			log.Println("Category not found: " + slugPath)
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		writeCachedJSON(w, r, map[string][]models.Photo{"photos": photos})
		return
	case err != nil:
		log.Printf("Error resolving %s: %v", slugPath, err)
		folder = slugPath
	}

	photos, err := h.gallery.GetPhotos(r.Context(), folder, slugPath)
	if err != nil {
		writeUnavailable(w)
		return
	}

	writeCachedJSON(w, r, map[string][]models.Photo{"photos": photos})
}

func writeUnavailable(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": unavailableMessage})
}

// IndexHandler renders the landing page
func (h *Handler) IndexHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("Generating Index")

	h.render(w, "index.pug", models.Index{
		SiteName:   h.siteName,
		Title:      h.siteName,
		Navigation: h.navigation(r.Context(), ""),
	})
}

// PageHandler renders the gallery page of a category or subcategory
func (h *Handler) PageHandler(w http.ResponseWriter, r *http.Request) {
	slugPath := strings.ToLower(strings.Trim(r.PathValue("path"), "/"))

	folder, err := h.gallery.ResolvePath(r.Context(), slugPath)
	if errors.Is(err, services.ErrCategoryNotFound) {
		log.Println("Category not found: " + slugPath)
		http.NotFound(w, r)
		return
	}

	page := models.GalleryPage{
		SiteName:   h.siteName,
		Navigation: h.navigation(r.Context(), slugPath),
		Photos:     []models.Photo{},
	}

	if err != nil {
		log.Printf("Error resolving %s: %v", slugPath, err)
		page.Label = services.DisplayName(lastSegment(slugPath))
		page.Title = h.pageTitle(strings.Split(slugPath, "/"))
		page.Message = unavailableMessage
		h.render(w, "gallery.pug", page)
		return
	}

	log.Println("Generating Gallery Page: " + folder)
	segments := strings.Split(folder, "/")
	page.Label = services.DisplayName(segments[len(segments)-1])
	page.Title = h.pageTitle(segments)

	photos, err := h.gallery.GetPhotos(r.Context(), folder, slugPath)
	switch {
	case err != nil:
		page.Message = unavailableMessage
	case len(photos) == 0:
		page.Message = emptyMessage
	default:
		page.Photos = photos
	}

	h.render(w, "gallery.pug", page)
}

// pageTitle joins the display names of a folder path, innermost first, and
// appends the site name: "Baptism | Events | Studio".
func (h *Handler) pageTitle(segments []string) string {
	parts := make([]string, 0, len(segments)+1)
	for i := len(segments) - 1; i >= 0; i-- {
		parts = append(parts, services.DisplayName(segments[i]))
	}
	parts = append(parts, h.siteName)
	return strings.Join(parts, " | ")
}

// navigation builds the site menu from the category tree, marking the
// entries on the active slug path.
func (h *Handler) navigation(ctx context.Context, active string) []models.NavItem {
	categories := h.gallery.GetCategories(ctx)

	items := make([]models.NavItem, 0, len(categories))
	for _, category := range categories {
		href := "/" + category.Slug
		item := models.NavItem{
			Label:  category.Label,
			Href:   href,
			Active: active == category.Slug || strings.HasPrefix(active, category.Slug+"/"),
		}
		for _, sub := range category.Subcategories {
			slugPath := category.Slug + "/" + sub.Slug
			item.Children = append(item.Children, models.NavItem{
				Label:  sub.Label,
				Href:   "/" + slugPath,
				Active: active == slugPath,
			})
		}
		items = append(items, item)
	}
	return items
}

func (h *Handler) render(w http.ResponseWriter, view string, data interface{}) {
	h.renderStatus(w, http.StatusOK, view, data)
}

func (h *Handler) renderStatus(w http.ResponseWriter, status int, view string, data interface{}) {
	template, err := pug.CompileFile(filepath.Join(h.viewsDir, view), pug.Options{})
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		log.Printf("Template error: %v", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := template.Execute(w, data); err != nil {
		log.Printf("Template execution error: %v", err)
	}
}

// writeCachedJSON writes v with shared-cache headers and an ETag, answering
// 304 when the client already holds the same body.
func writeCachedJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		log.Printf("Error marshaling response: %v", err)
		return
	}

	etag := fmt.Sprintf(`"%016x"`, xxhash.Sum64(body))
	w.Header().Set("Cache-Control", jsonCacheControl)
	w.Header().Set("ETag", etag)

	if matchesETag(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}

func matchesETag(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

func lastSegment(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
