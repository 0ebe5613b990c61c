package loader

import (
	"image"

	"github.com/Carmen-Shannon/oxy-chess/common"
)

// loaderBackend decodes texture sources into images.
// The file backend reads from disk; tests substitute their own.
type loaderBackend interface {
	// Decode decodes one texture source.
	//
	// Parameters:
	//   - src: the texture source
	//
	// Returns:
	//   - image.Image: the decoded image
	//   - error: error if the source cannot be read or decoded
	Decode(src common.TextureSource) (image.Image, error)
}

// fileLoaderBackend decodes any format registered with the image package.
type fileLoaderBackend struct{}

var _ loaderBackend = fileLoaderBackend{}

func (fileLoaderBackend) Decode(src common.TextureSource) (image.Image, error) {
	return src.Image()
}
