package models

// FallbackWidth and FallbackHeight are used whenever an image's real
// dimensions are unknown.
const (
	FallbackWidth  = 1200
	FallbackHeight = 800
)

// Category is a top-level gallery folder in the bucket
type Category struct {
	Slug     string `json:"slug"`
	Label    string `json:"label"`
	FullPath string `json:"fullPath"`
	// Subcategories is nil unless at least one subfolder holds images.
	Subcategories []Subcategory `json:"subcategories,omitempty"`
}

// Subcategory is a second-level folder under a Category
type Subcategory struct {
	Slug     string `json:"slug"`
	Label    string `json:"label"`
	FullPath string `json:"fullPath"`
}

// Photo is a displayable image with its pixel dimensions
type Photo struct {
	Src      string `json:"src"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Alt      string `json:"alt"`
	Title    string `json:"title,omitempty"`
	Category string `json:"category"`
}

// ManifestEntry holds the dimensions of one image in the manifest
type ManifestEntry struct {
	Filename string `json:"filename"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// Manifest is the precomputed index of images per category
type Manifest struct {
	Updated string                     `json:"updated"`
	Images  map[string][]ManifestEntry `json:"images"`
}

// ImageObject is an image found by listing the bucket directly
type ImageObject struct {
	Src      string `json:"src"`
	Filename string `json:"filename"`
}

// ContactSubmission is a message sent through the contact form
type ContactSubmission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// NavItem is a link in the site navigation
type NavItem struct {
	Label    string
	Href     string
	Active   bool
	Children []NavItem
}

// Index represents the main index page data
type Index struct {
	SiteName   string
	Title      string
	Navigation []NavItem
}

// GalleryPage represents a single category gallery page
type GalleryPage struct {
	SiteName   string
	Title      string
	Label      string
	Navigation []NavItem
	Photos     []Photo
	Message    string
}

// ContactPage represents the contact form page
type ContactPage struct {
	SiteName   string
	Title      string
	Navigation []NavItem
	Form       ContactSubmission
	Sent       bool
	Error      string
}
