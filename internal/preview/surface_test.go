package preview

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFitRect(t *testing.T) {
	rect := image.Rect(0, 0, 200, 100)

	cases := []struct {
		name       string
		imgW, imgH int
		want       image.Rectangle
	}{
		{"wide fits width", 400, 100, image.Rect(0, 25, 200, 75)},
		{"tall fits height", 100, 200, image.Rect(75, 0, 125, 100)},
		{"small scales up", 20, 10, image.Rect(0, 0, 200, 100)},
		{"square", 50, 50, image.Rect(50, 0, 150, 100)},
		{"zero size", 0, 10, image.Rectangle{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FitRect(tc.imgW, tc.imgH, rect)
			assert.Equal(t, tc.want, got)
			if !got.Empty() {
				assert.True(t, got.In(rect))
			}
		})
	}
}

func TestFitRect_Offset(t *testing.T) {
	got := FitRect(100, 100, image.Rect(10, 30, 110, 80))
	assert.Equal(t, image.Rect(35, 30, 85, 80), got)
}

func TestImageSurface_DrawImageClipped(t *testing.T) {
	s := NewImageSurface(100, 100)
	src := image.NewUniform(color.RGBA{R: 0xff, A: 0xff})
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.Set(x, y, src.C)
		}
	}

	clip := image.Rect(20, 20, 60, 60)
	s.DrawImage(img, image.Rect(0, 0, 100, 100), clip)

	inside := s.Dst.RGBAAt(40, 40)
	assert.Greater(t, inside.R, uint8(0xf0))
	assert.Equal(t, uint8(0xff), inside.A)
	assert.Equal(t, color.RGBA{}, s.Dst.RGBAAt(10, 10), "outside clip stays untouched")
	assert.Equal(t, color.RGBA{}, s.Dst.RGBAAt(70, 70))
}

func TestImageSurface_DrawText(t *testing.T) {
	s := NewImageSurface(200, 40)
	s.DrawText(StatusEmpty, image.Pt(100, 20))

	painted := 0
	b := s.Dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if s.Dst.RGBAAt(x, y).A != 0 {
				painted++
			}
		}
	}
	assert.Greater(t, painted, 0)
}

func TestWidget_SizeAndDraw(t *testing.T) {
	c := NewController(nil, nil, Options{Logger: quiet()})
	w := NewWidget("preview", c)

	width, height := w.ComputeSize(300)
	assert.Equal(t, 300, width)
	assert.Equal(t, PreviewHeight+2*Margin, height)

	s := &recordingSurface{}
	w.Draw(s, 300, 50)
	assert.Equal(t, []image.Rectangle{image.Rect(10, 60, 290, 260)}, s.fills)
	assert.Equal(t, []string{StatusIdle}, s.texts)

	s = &recordingSurface{}
	w.Draw(s, 15, 0)
	assert.Empty(t, s.fills, "too narrow to draw")
}
