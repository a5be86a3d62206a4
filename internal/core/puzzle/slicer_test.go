package puzzle

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"testing"

	"puzzle-rewards/internal/core/domain/exceptions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSideFor(t *testing.T) {
	for gridSize, want := range map[int]int{9: 3, 16: 4, 25: 5} {
		side, err := SideFor(gridSize)
		require.NoError(t, err)
		assert.Equal(t, want, side)
	}
	_, err := SideFor(12)
	assert.ErrorIs(t, err, exceptions.ErrValidation)
}

func TestSliceNormalizesToSquareCanvas(t *testing.T) {
	s := NewSlicer(120, 0)
	canvas, pieces, err := s.Slice(gradientPNG(t, 300, 180), 9)
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 120, 120), canvas.Bounds())
	require.Len(t, pieces, 9)
	for i, p := range pieces {
		assert.Equal(t, i, p.Index)
		assert.Equal(t, i/3, p.Row)
		assert.Equal(t, i%3, p.Col)
		assert.Len(t, p.Pix, 40*40*4)
	}
}

func TestCutGivesRemainderToLastRowAndColumn(t *testing.T) {
	canvas := image.NewRGBA(image.Rect(0, 0, 10, 10))
	pieces := Cut(canvas, 3)
	require.Len(t, pieces, 9)

	assert.Equal(t, image.Rect(0, 0, 3, 3), pieces[0].Bounds)
	assert.Equal(t, image.Rect(6, 0, 10, 3), pieces[2].Bounds)
	assert.Equal(t, image.Rect(0, 6, 3, 10), pieces[6].Bounds)
	assert.Equal(t, image.Rect(6, 6, 10, 10), pieces[8].Bounds)
	assert.Len(t, pieces[8].Pix, 4*4*4)

	area := 0
	for _, p := range pieces {
		area += p.Bounds.Dx() * p.Bounds.Dy()
	}
	assert.Equal(t, 100, area)
}

func TestDecodeRejectsBadInput(t *testing.T) {
	s := NewSlicer(0, 1024)

	_, _, err := s.Decode(nil)
	assert.ErrorIs(t, err, exceptions.ErrValidation)

	_, _, err = s.Decode(bytes.Repeat([]byte{0xff}, 2048))
	require.ErrorIs(t, err, exceptions.ErrValidation)
	assert.Contains(t, err.Error(), "max 1KB")
	assert.NotContains(t, err.Error(), "5MB")

	_, _, err = s.Decode([]byte("definitely not an image"))
	assert.ErrorIs(t, err, exceptions.ErrValidation)

	var buf bytes.Buffer
	pal := image.NewPaletted(image.Rect(0, 0, 4, 4), color.Palette{color.Black, color.White})
	require.NoError(t, gif.Encode(&buf, pal, nil))
	_, _, err = s.Decode(buf.Bytes())
	require.ErrorIs(t, err, exceptions.ErrValidation)
	assert.Contains(t, err.Error(), "gif")
}

func TestHumanBytes(t *testing.T) {
	assert.Equal(t, "5MB", humanBytes(DefaultMaxImageBytes))
	assert.Equal(t, "512KB", humanBytes(512<<10))
	assert.Equal(t, "1500 bytes", humanBytes(1500))
}

func TestDecodeAcceptsPNG(t *testing.T) {
	s := NewSlicer(0, 0)
	img, format, err := s.Decode(gradientPNG(t, 20, 20))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 20, img.Bounds().Dx())
}
