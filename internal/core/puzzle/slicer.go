package puzzle

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"puzzle-rewards/internal/core/domain/exceptions"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	DefaultCanvasSize    = 400
	DefaultMaxImageBytes = 5 << 20

	// maxSourcePixels bounds decoded dimensions so a tiny compressed file
	// cannot expand into an enormous raster.
	maxSourcePixels = 40_000_000
)

var allowedFormats = map[string]bool{"jpeg": true, "png": true, "webp": true}

// Piece is one rectangular region of the normalized canvas. Pix holds the
// region's RGBA bytes row by row, so its length is width*height*4.
type Piece struct {
	Index  int
	Row    int
	Col    int
	Bounds image.Rectangle
	Pix    []byte
}

type Slicer struct {
	canvas   int
	maxBytes int
}

func NewSlicer(canvas, maxBytes int) *Slicer {
	if canvas <= 0 {
		canvas = DefaultCanvasSize
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	return &Slicer{canvas: canvas, maxBytes: maxBytes}
}

func (s *Slicer) CanvasSize() int { return s.canvas }

// SideFor returns the grid side for a piece count. Only 9, 16 and 25 are
// supported.
func SideFor(gridSize int) (int, error) {
	switch gridSize {
	case 9:
		return 3, nil
	case 16:
		return 4, nil
	case 25:
		return 5, nil
	default:
		return 0, exceptions.Validation("grid_size", "must be one of 9, 16 or 25, got %d", gridSize)
	}
}

// Decode checks size and format before decoding the full image.
func (s *Slicer) Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", exceptions.Validation("image", "image is empty")
	}
	if len(data) > s.maxBytes {
		return nil, "", exceptions.Validation("image", "image is %d bytes (allowed formats: jpeg, png, webp; max %s)", len(data), humanBytes(s.maxBytes))
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", exceptions.Validation("image", "image cannot be decoded (allowed formats: jpeg, png, webp)")
	}
	if !allowedFormats[format] {
		return nil, "", exceptions.Validation("image", "format %s is not allowed (allowed formats: jpeg, png, webp)", format)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxSourcePixels {
		return nil, "", exceptions.Validation("image", "image dimensions %dx%d are not supported", cfg.Width, cfg.Height)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", exceptions.Validation("image", "image cannot be decoded: %v", err)
	}
	return img, format, nil
}

// Normalize center-crops img to a square and scales it onto the fixed canvas.
func (s *Slicer) Normalize(img image.Image) *image.RGBA {
	b := img.Bounds()
	side := b.Dx()
	if b.Dy() < side {
		side = b.Dy()
	}
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	crop := image.Rect(x0, y0, x0+side, y0+side)

	dst := image.NewRGBA(image.Rect(0, 0, s.canvas, s.canvas))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, crop, draw.Src, nil)
	return dst
}

// Slice decodes, normalizes and cuts data into gridSize pieces in row-major
// order (index = row*side + col).
func (s *Slicer) Slice(data []byte, gridSize int) (*image.RGBA, []Piece, error) {
	side, err := SideFor(gridSize)
	if err != nil {
		return nil, nil, err
	}
	img, _, err := s.Decode(data)
	if err != nil {
		return nil, nil, err
	}
	canvas := s.Normalize(img)
	return canvas, Cut(canvas, side), nil
}

// Cut splits canvas into side*side regions. Every region is canvas/side wide
// and tall, except the last column and row which absorb the remainder.
func Cut(canvas *image.RGBA, side int) []Piece {
	b := canvas.Bounds()
	cellW := b.Dx() / side
	cellH := b.Dy() / side

	pieces := make([]Piece, 0, side*side)
	for row := 0; row < side; row++ {
		for col := 0; col < side; col++ {
			x0 := b.Min.X + col*cellW
			y0 := b.Min.Y + row*cellH
			x1 := x0 + cellW
			y1 := y0 + cellH
			if col == side-1 {
				x1 = b.Max.X
			}
			if row == side-1 {
				y1 = b.Max.Y
			}
			r := image.Rect(x0, y0, x1, y1)
			pieces = append(pieces, Piece{
				Index:  row*side + col,
				Row:    row,
				Col:    col,
				Bounds: r,
				Pix:    regionBytes(canvas, r),
			})
		}
	}
	return pieces
}

func regionBytes(img *image.RGBA, r image.Rectangle) []byte {
	rowLen := r.Dx() * 4
	out := make([]byte, 0, rowLen*r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		start := img.PixOffset(r.Min.X, y)
		out = append(out, img.Pix[start:start+rowLen]...)
	}
	return out
}

func humanBytes(n int) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%dMB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%dKB", n>>10)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}
