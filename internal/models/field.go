package models

import (
	"image"
	"path/filepath"
	"strings"
)

// Field represents a loaded source image with metadata
type Field struct {
	// Image is the decoded source image data
	Image image.Image

	// Name is a short identifier derived from the source filename
	Name string

	// Path is the original file path of the image
	Path string

	// Width and Height are the image dimensions in pixels
	Width  int
	Height int
}

// NewField wraps a decoded image with its source metadata
func NewField(img image.Image, path string) *Field {
	bounds := img.Bounds()
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	return &Field{
		Image:  img,
		Name:   name,
		Path:   path,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}
}
