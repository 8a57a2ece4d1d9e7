package console

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// cellPixelW/H size a rendered glyph cell; chosen so the default 7x13
// bitmap face (used when no custom TTF is supplied) sits comfortably
// inside each cell.
const (
	cellPixelW = 9
	cellPixelH = 16
)

// Snapshot rasterizes the current text-mode grid into an RGBA image using
// gg. It is a read-only debug view; it never feeds back into
// Write/scroll/cursor state.
//
// ttfBytes may be nil, in which case a built-in bitmap face is used; when
// supplied, it is parsed with golang/freetype and rendered through gg's
// font-face path.
func (c *Console) Snapshot(ttfBytes []byte) (image.Image, error) {
	dc := gg.NewContext(Width*cellPixelW, Height*cellPixelH)
	dc.SetColor(color.Black)
	dc.Clear()

	face, err := loadFace(ttfBytes)
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(face)

	for row := 0; row < Height; row++ {
		for col := 0; col < Width; col++ {
			cell := c.cells[row][col]
			fg, bg := attrColors(cell.Attr)

			x0 := float64(col * cellPixelW)
			y0 := float64(row * cellPixelH)
			dc.SetColor(bg)
			dc.DrawRectangle(x0, y0, cellPixelW, cellPixelH)
			dc.Fill()

			if cell.Glyph == ' ' || cell.Glyph == 0 {
				continue
			}
			dc.SetColor(fg)
			dc.DrawString(string(cell.Glyph), x0+1, y0+float64(cellPixelH)-4)
		}
	}

	return dc.Image(), nil
}

func loadFace(ttfBytes []byte) (font.Face, error) {
	if len(ttfBytes) == 0 {
		return basicfont.Face7x13, nil
	}

	parsed, err := freetype.ParseFont(ttfBytes)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(parsed, &truetype.Options{Size: 12}), nil
}

// vgaPalette is the 16-color CGA/VGA text-mode palette, indexed the same
// way the attribute byte's fg/bg nibbles are: attr=(bg<<4)|fg.
var vgaPalette = [16]color.RGBA{
	{0x00, 0x00, 0x00, 0xFF}, // black
	{0x00, 0x00, 0xAA, 0xFF}, // blue
	{0x00, 0xAA, 0x00, 0xFF}, // green
	{0x00, 0xAA, 0xAA, 0xFF}, // cyan
	{0xAA, 0x00, 0x00, 0xFF}, // red
	{0xAA, 0x00, 0xAA, 0xFF}, // magenta
	{0xAA, 0x55, 0x00, 0xFF}, // brown
	{0xAA, 0xAA, 0xAA, 0xFF}, // light gray
	{0x55, 0x55, 0x55, 0xFF}, // dark gray
	{0x55, 0x55, 0xFF, 0xFF}, // light blue
	{0x55, 0xFF, 0x55, 0xFF}, // light green
	{0x55, 0xFF, 0xFF, 0xFF}, // light cyan
	{0xFF, 0x55, 0x55, 0xFF}, // light red
	{0xFF, 0x55, 0xFF, 0xFF}, // pink
	{0xFF, 0xFF, 0x55, 0xFF}, // yellow
	{0xFF, 0xFF, 0xFF, 0xFF}, // white
}

func attrColors(attr byte) (fg, bg color.RGBA) {
	return vgaPalette[attr&0x0F], vgaPalette[(attr>>4)&0x0F]
}
