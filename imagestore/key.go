package imagestore

import (
	"path"
	"strings"

	"github.com/google/uuid"
)

const Prefix = "analysis"

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
}

// NewKey returns a fresh object key under the analysis prefix, keeping the
// upload's extension or deriving one from its content type.
func NewKey(filename string, contentType string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) == 0 {
		ext = extensions[strings.ToLower(strings.TrimSpace(contentType))]
	}
	return Prefix + "/" + uuid.NewString() + ext
}
