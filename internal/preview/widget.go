package preview

import (
	"image"
	"image/color"
)

const (
	PreviewHeight = 200
	Margin        = 10
)

var panelColor = color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff}

// Widget is the drawable the host places under the selectors.
type Widget struct {
	Name string
	ctl  *Controller
}

func NewWidget(name string, ctl *Controller) *Widget {
	return &Widget{Name: name, ctl: ctl}
}

func (w *Widget) Controller() *Controller { return w.ctl }

// ComputeSize reports the widget size for a node of the given width. The
// height is fixed.
func (w *Widget) ComputeSize(width int) (int, int) {
	return width, PreviewHeight + 2*Margin
}

// Rect is the preview area for a widget drawn at y in a node ownerWidth wide.
func (w *Widget) Rect(ownerWidth, y int) image.Rectangle {
	return image.Rectangle{
		Min: image.Pt(Margin, y+Margin),
		Max: image.Pt(ownerWidth-Margin, y+Margin+PreviewHeight),
	}
}

func (w *Widget) Draw(s Surface, ownerWidth, y int) {
	rect := w.Rect(ownerWidth, y)
	if rect.Dx() <= 0 {
		return
	}
	s.FillRect(rect, panelColor)
	w.ctl.Render(s, rect)
}
