package cards

import (
	"fmt"
	"image"
	"image/color"
	"os"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// faceSet holds the faces used on a card, mirroring the three text roles.
type faceSet struct {
	title    font.Face
	subtitle font.Face
	small    font.Face
}

// loadFaces loads the first available font from the configured candidates.
// When none can be read, the fixed basicfont face is used so card generation
// still succeeds on systems without the expected fonts installed.
func loadFaces(paths []string) (*faceSet, error) {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		ft, err := opentype.Parse(data)
		if err != nil {
			continue
		}

		title, err := opentype.NewFace(ft, &opentype.FaceOptions{Size: 46, DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			return nil, fmt.Errorf("creating title face from %s: %w", path, err)
		}
		subtitle, err := opentype.NewFace(ft, &opentype.FaceOptions{Size: 28, DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			return nil, fmt.Errorf("creating subtitle face from %s: %w", path, err)
		}
		small, err := opentype.NewFace(ft, &opentype.FaceOptions{Size: 24, DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			return nil, fmt.Errorf("creating small face from %s: %w", path, err)
		}

		return &faceSet{title: title, subtitle: subtitle, small: small}, nil
	}

	fallback := basicfont.Face7x13
	return &faceSet{title: fallback, subtitle: fallback, small: fallback}, nil
}

// parseHexColor parses #rgb or #rrggbb.
func parseHexColor(s string) (color.NRGBA, error) {
	c := color.NRGBA{A: 255}

	hexVal := func(b byte) (uint8, bool) {
		switch {
		case b >= '0' && b <= '9':
			return b - '0', true
		case b >= 'a' && b <= 'f':
			return b - 'a' + 10, true
		case b >= 'A' && b <= 'F':
			return b - 'A' + 10, true
		}
		return 0, false
	}

	if len(s) == 0 || s[0] != '#' {
		return c, fmt.Errorf("color %q must start with #", s)
	}

	switch len(s) {
	case 7:
		for i, p := range []*uint8{&c.R, &c.G, &c.B} {
			hi, ok1 := hexVal(s[1+i*2])
			lo, ok2 := hexVal(s[2+i*2])
			if !ok1 || !ok2 {
				return c, fmt.Errorf("color %q has invalid hex digits", s)
			}
			*p = hi<<4 | lo
		}
	case 4:
		for i, p := range []*uint8{&c.R, &c.G, &c.B} {
			v, ok := hexVal(s[1+i])
			if !ok {
				return c, fmt.Errorf("color %q has invalid hex digits", s)
			}
			*p = v<<4 | v
		}
	default:
		return c, fmt.Errorf("color %q must be #rgb or #rrggbb", s)
	}
	return c, nil
}

// circlePhoto scales a photo to size x size (center-cropping to square first)
// and applies a circular alpha mask.
func circlePhoto(src image.Image, size int) *image.NRGBA {
	square := centerCrop(src)

	scaled := image.NewNRGBA(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), square, square.Bounds(), xdraw.Over, nil)

	out := image.NewNRGBA(image.Rect(0, 0, size, size))
	r := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) - r + 0.5
			dy := float64(y) - r + 0.5
			if dx*dx+dy*dy <= r*r {
				out.Set(x, y, scaled.NRGBAAt(x, y))
			}
		}
	}
	return out
}

// centerCrop returns the largest centered square region of an image.
func centerCrop(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == h {
		return src
	}

	min := w
	if h < min {
		min = h
	}
	x0 := b.Min.X + (w-min)/2
	y0 := b.Min.Y + (h-min)/2
	rect := image.Rect(x0, y0, x0+min, y0+min)

	cropped := image.NewNRGBA(image.Rect(0, 0, min, min))
	xdraw.Draw(cropped, cropped.Bounds(), src, rect.Min, xdraw.Src)
	return cropped
}
