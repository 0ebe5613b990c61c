// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// TextureStagingData holds RGBA pixel data for a texture pending GPU upload.
type TextureStagingData struct {
	// Pixels is the RGBA pixel data, 4 bytes per pixel, row-major.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range.
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}

// TextureSource describes where a texture's image comes from.
// For in-memory images the Data field contains encoded bytes (PNG, JPEG, BMP, TIFF or WebP).
// Otherwise the Path field names a file on disk.
type TextureSource struct {
	// Name is an identifier for this texture (e.g., "white pawn").
	Name string

	// Path is the file path of the image (empty for in-memory data).
	Path string

	// Data contains encoded image bytes.
	Data []byte
}

// Image decodes the texture source into an image.
// Reference: https://pkg.go.dev/image
//
// Returns:
//   - image.Image: the decoded image
//   - error: error if the source is empty, missing or undecodable
func (t *TextureSource) Image() (image.Image, error) {
	if t == nil {
		return nil, fmt.Errorf("texture is nil")
	}

	if len(t.Data) > 0 {
		img, _, err := image.Decode(bytes.NewReader(t.Data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode embedded image %s: %w", t.Name, err)
		}
		return img, nil
	}
	if t.Path == "" {
		return nil, fmt.Errorf("texture %s has neither data nor path", t.Name)
	}

	file, err := os.Open(t.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture file %s: %w", t.Path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode texture file %s: %w", t.Path, err)
	}
	return img, nil
}

// Decode decodes the texture source into RGBA staging data.
//
// Returns:
//   - TextureStagingData: decoded RGBA pixels and dimensions
//   - error: error if the source is empty, missing or undecodable
func (t *TextureSource) Decode() (TextureStagingData, error) {
	img, err := t.Image()
	if err != nil {
		return TextureStagingData{}, err
	}
	return ImageToStaging(img), nil
}

// ImageToStaging converts any image into tightly packed RGBA staging data.
//
// Parameters:
//   - img: the source image
//
// Returns:
//   - TextureStagingData: RGBA pixels with the image's dimensions
func ImageToStaging(img image.Image) TextureStagingData {
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}
}

// SolidTexture returns a size x size texture filled with a single color.
//
// Parameters:
//   - c: fill color
//   - size: edge length in pixels
//
// Returns:
//   - TextureStagingData: the filled texture
func SolidTexture(c color.RGBA, size int) TextureStagingData {
	pixels := make([]byte, size*size*4)
	for i := 0; i < len(pixels); i += 4 {
		pixels[i], pixels[i+1], pixels[i+2], pixels[i+3] = c.R, c.G, c.B, c.A
	}
	return TextureStagingData{Pixels: pixels, Width: uint32(size), Height: uint32(size)}
}
