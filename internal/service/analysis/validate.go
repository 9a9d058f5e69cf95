package analysis

import (
	"io"
	"strings"
)

const MaxImageSize int64 = 10 << 20

var supportedTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        io.Reader
}

// Validate checks upload metadata only; it never reads Data.
func Validate(upload Upload) error {
	if upload.Size <= 0 {
		return invalid(EmptyFile, "the image file is empty")
	}

	if upload.Size > MaxImageSize {
		return invalid(TooLarge, "the image is %d bytes; the limit is %d bytes", upload.Size, MaxImageSize)
	}

	contentType := mediaType(upload.ContentType)
	if len(contentType) == 0 {
		return invalid(UnknownType, "the image content type could not be determined")
	}

	if !supportedTypes[contentType] {
		return invalid(UnsupportedType, "only JPG and PNG images are accepted, got %s", contentType)
	}

	return nil
}

func mediaType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// readImage reads at most one byte past the limit so oversize bodies are
// caught even when the declared size was wrong.
func readImage(upload Upload) ([]byte, error) {
	if upload.Data == nil {
		return nil, io.ErrUnexpectedEOF
	}
	return io.ReadAll(io.LimitReader(upload.Data, MaxImageSize+1))
}
