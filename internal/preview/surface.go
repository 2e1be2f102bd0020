package preview

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Surface is the drawing target handed to widgets by the host.
type Surface interface {
	FillRect(r image.Rectangle, c color.Color)
	// DrawImage scales img into dst; nothing outside clip is touched.
	DrawImage(img image.Image, dst, clip image.Rectangle)
	DrawText(text string, center image.Point)
}

// FitRect scales an imgW x imgH image to the largest size that fits inside
// rect while keeping its aspect ratio, centered in rect.
func FitRect(imgW, imgH int, rect image.Rectangle) image.Rectangle {
	rw, rh := rect.Dx(), rect.Dy()
	if imgW <= 0 || imgH <= 0 || rw <= 0 || rh <= 0 {
		return image.Rectangle{}
	}

	scale := math.Min(float64(rw)/float64(imgW), float64(rh)/float64(imgH))
	w := int(math.Round(float64(imgW) * scale))
	h := int(math.Round(float64(imgH) * scale))
	w = min(max(w, 1), rw)
	h = min(max(h, 1), rh)

	x := rect.Min.X + (rw-w)/2
	y := rect.Min.Y + (rh-h)/2
	return image.Rect(x, y, x+w, y+h)
}

// ImageSurface renders into an in-memory RGBA image.
type ImageSurface struct {
	Dst       *image.RGBA
	Face      font.Face
	TextColor color.Color
}

func NewImageSurface(w, h int) *ImageSurface {
	return &ImageSurface{
		Dst:       image.NewRGBA(image.Rect(0, 0, w, h)),
		Face:      basicfont.Face7x13,
		TextColor: color.RGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff},
	}
}

func (s *ImageSurface) FillRect(r image.Rectangle, c color.Color) {
	draw.Draw(s.Dst, r.Intersect(s.Dst.Bounds()), image.NewUniform(c), image.Point{}, draw.Src)
}

func (s *ImageSurface) DrawImage(img image.Image, dst, clip image.Rectangle) {
	area := clip.Intersect(s.Dst.Bounds())
	if area.Empty() || dst.Empty() {
		return
	}
	target, ok := s.Dst.SubImage(area).(*image.RGBA)
	if !ok {
		return
	}
	draw.ApproxBiLinear.Scale(target, dst, img, img.Bounds(), draw.Over, nil)
}

func (s *ImageSurface) DrawText(text string, center image.Point) {
	d := &font.Drawer{
		Dst:  s.Dst,
		Src:  image.NewUniform(s.TextColor),
		Face: s.Face,
	}
	width := d.MeasureString(text)
	m := s.Face.Metrics()
	d.Dot = fixed.Point26_6{
		X: fixed.I(center.X) - width/2,
		Y: fixed.I(center.Y) + (m.Ascent-m.Descent)/2,
	}
	d.DrawString(text)
}
