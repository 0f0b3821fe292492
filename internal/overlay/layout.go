package overlay

import (
	"fmt"
	"math"

	"skin-vision-bot/internal/domain/entity"
)

const (
	labelPadX = 5
	labelPadY = 6
)

// Measurer возвращает ширину и высоту строки в пикселях растра.
type Measurer func(text string) (w, h float64)

// Rect прямоугольник в координатах растра.
type Rect struct {
	X, Y, W, H float64
}

// Box готовая к отрисовке рамка с подписью.
type Box struct {
	Detection  entity.Detection
	Rect       Rect
	Style      Style
	Text       string
	Label      Rect
	LabelBelow bool
}

// LabelText формирует подпись вида "Papule 87%".
func LabelText(d entity.Detection) string {
	return fmt.Sprintf("%s %d%%", d.Label, int(math.Round(d.Confidence*100)))
}

// Plan отбирает видимые рамки, масштабирует их и размещает подписи.
// Подпись ставится над рамкой, а если она уходит за верхний край растра, под рамкой.
func Plan(dets []entity.Detection, threshold, scale float64, measure Measurer) (boxes []Box, skipped []entity.Detection) {
	visible := Visible(dets, threshold)
	boxes = make([]Box, 0, len(visible))
	for _, d := range visible {
		if !d.Valid() {
			skipped = append(skipped, d)
			continue
		}
		left, top := d.TopLeft()
		r := Rect{X: left * scale, Y: top * scale, W: d.Width * scale, H: d.Height * scale}

		text := LabelText(d)
		tw, th := measure(text)
		label := Rect{X: r.X, W: tw + 2*labelPadX, H: th + 2*labelPadY}
		below := r.Y-label.H < 0
		if below {
			label.Y = r.Y + r.H
		} else {
			label.Y = r.Y - label.H
		}

		boxes = append(boxes, Box{
			Detection:  d,
			Rect:       r,
			Style:      ResolveColor(d.Label),
			Text:       text,
			Label:      label,
			LabelBelow: below,
		})
	}
	return boxes, skipped
}
