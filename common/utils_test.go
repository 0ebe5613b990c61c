package common

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 0, 3, 4))
	assert.Equal(t, "", Coalesce[string]())
	assert.Equal(t, "a", Coalesce("", "a"))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1, Clamp(-4, 1, 10))
	assert.Equal(t, 10, Clamp(40, 1, 10))
	assert.Equal(t, float32(2.5), Clamp(float32(2.5), 1, 10))
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#ff0000", color.RGBA{R: 255, A: 255}, false},
		{"00ff0080", color.RGBA{G: 255, A: 128}, false},
		{"#fff", color.RGBA{}, true},
		{"#gg0000", color.RGBA{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHexColor(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTextureSourceDecode(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.Set(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	src := &TextureSource{Name: "test", Data: buf.Bytes()}
	staging, err := src.Decode()
	require.NoError(t, err)
	assert.Equal(t, uint32(3), staging.Width)
	assert.Equal(t, uint32(2), staging.Height)
	assert.Len(t, staging.Pixels, 3*2*4)

	off := (1*3 + 1) * 4
	assert.Equal(t, []byte{10, 20, 30, 255}, staging.Pixels[off:off+4])
}

func TestTextureSourceDecodeErrors(t *testing.T) {
	var nilSrc *TextureSource
	_, err := nilSrc.Decode()
	assert.Error(t, err)

	_, err = (&TextureSource{}).Decode()
	assert.Error(t, err)

	_, err = (&TextureSource{Path: "does/not/exist.png"}).Decode()
	assert.Error(t, err)
}

func TestSolidTexture(t *testing.T) {
	tex := SolidTexture(color.RGBA{R: 1, G: 2, B: 3, A: 4}, 4)
	assert.Equal(t, uint32(4), tex.Width)
	assert.Len(t, tex.Pixels, 64)
	assert.Equal(t, []byte{1, 2, 3, 4}, tex.Pixels[60:])
}
