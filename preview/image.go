// Package preview decodes user-selected images and renders them for the terminal.
package preview

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/nachoal/visionari-go/llm"
)

// AllowedExtensions lists the extensions offered by image choosers
var AllowedExtensions = []string{".png", ".jpeg", ".jpg"}

// Image is a decoded image ready for preview
type Image struct {
	Path   string
	Format string // "png" or "jpeg", as reported by the decoder
	MIME   string
	Image  image.Image
}

// Bounds returns the pixel size of the decoded image
func (i *Image) Bounds() image.Rectangle {
	return i.Image.Bounds()
}

// Decoder turns a path into a decoded image
type Decoder interface {
	Decode(path string) (*Image, error)
}

// FileDecoder decodes images from the local filesystem
type FileDecoder struct{}

// Decode opens path and decodes it as PNG or JPEG
func (FileDecoder) Decode(path string) (*Image, error) {
	return Decode(path)
}

// Decode opens path and decodes it as PNG or JPEG
func Decode(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	return &Image{
		Path:   path,
		Format: format,
		MIME:   "image/" + format,
		Image:  img,
	}, nil
}

// DetectMIME sniffs the MIME type of image data. Anything that is not an
// image falls back to llm.DefaultImageMIME.
func DetectMIME(data []byte) string {
	mt := mimetype.Detect(data)
	if mt == nil || !strings.HasPrefix(mt.String(), "image/") {
		return llm.DefaultImageMIME
	}
	return mt.String()
}

// HasAllowedExtension reports whether path ends in one of AllowedExtensions
func HasAllowedExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
