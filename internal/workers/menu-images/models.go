// internal/workers/menu-images/models.go
package menuimages

const (
	TaskType      = "refresh-menu-images"
	DefaultPrefix = "menu_images/"

	// menuPathMarker must appear in an image source for it to be considered.
	menuPathMarker = "/menu/"
)

// Asset is one scraped image ready for upload.
type Asset struct {
	RemoteURL     string
	CanonicalName string
	ContentType   string
	Bytes         []byte
}

// Summary is the outcome of one refresh run.
type Summary struct {
	Cleared  int `json:"cleared"`
	Found    int `json:"found"`
	Uploaded int `json:"uploaded"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}
