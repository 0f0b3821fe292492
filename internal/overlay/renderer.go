package overlay

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"

	"skin-vision-bot/internal/domain/entity"
)

const (
	strokeWidth = 3
	fillAlpha   = 38 // ~15% непрозрачности
	labelSize   = 12
)

var labelFont *truetype.Font

// init разбирает шрифт подписей один раз.
func init() {
	var err error
	labelFont, err = truetype.Parse(gobold.TTF)
	if err != nil {
		panic(err)
	}
}

// Frame результат одного прохода отрисовки.
type Frame struct {
	Image   *image.RGBA
	Scale   float64
	Drawn   int // нарисовано рамок
	Skipped int // пропущено рамок с некорректной геометрией
}

// Renderer рисует снимок и рамки детекций поверх него.
// Значение без состояния: одинаковые входы дают побайтно одинаковый растр.
type Renderer struct {
	logger *zap.Logger
}

// NewRenderer создаёт отрисовщик. logger может быть nil.
func NewRenderer(logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{logger: logger}
}

func newLabelFace() font.Face {
	return truetype.NewFace(labelFont, &truetype.Options{Size: labelSize})
}

// Render масштабирует img под displayWidth и рисует видимые рамки.
func (r *Renderer) Render(img image.Image, dets []entity.Detection, threshold float64, displayWidth int) (*Frame, error) {
	if displayWidth <= 0 {
		return nil, ErrLayoutNotReady
	}
	if img == nil || img.Bounds().Dx() <= 0 || img.Bounds().Dy() <= 0 {
		return nil, ErrImageDecode
	}

	src := img.Bounds()
	scale := float64(displayWidth) / float64(src.Dx())
	height := int(math.Round(float64(src.Dy()) * scale))
	if height < 1 {
		height = 1
	}

	raster := image.NewRGBA(image.Rect(0, 0, displayWidth, height))
	dc := gg.NewContextForRGBA(raster)
	dc.DrawImage(imaging.Resize(img, displayWidth, height, imaging.Linear), 0, 0)

	face := newLabelFace()
	defer face.Close()
	dc.SetFontFace(face)

	boxes, skipped := Plan(dets, threshold, scale, dc.MeasureString)
	for _, d := range skipped {
		r.logger.Warn("skipping detection with invalid geometry",
			zap.String("label", d.Label),
			zap.Float64("center_x", d.CenterX),
			zap.Float64("center_y", d.CenterY),
			zap.Float64("width", d.Width),
			zap.Float64("height", d.Height),
		)
	}
	for _, b := range boxes {
		paintBox(dc, b)
	}

	return &Frame{Image: raster, Scale: scale, Drawn: len(boxes), Skipped: len(skipped)}, nil
}

func paintBox(dc *gg.Context, b Box) {
	dc.DrawRectangle(b.Rect.X, b.Rect.Y, b.Rect.W, b.Rect.H)
	dc.SetColor(b.Style.Fill(fillAlpha))
	dc.Fill()

	dc.DrawRectangle(b.Rect.X, b.Rect.Y, b.Rect.W, b.Rect.H)
	dc.SetColor(b.Style.Box)
	dc.SetLineWidth(strokeWidth)
	dc.Stroke()

	dc.DrawRectangle(b.Label.X, b.Label.Y, b.Label.W, b.Label.H)
	dc.SetColor(b.Style.Box)
	dc.Fill()

	dc.SetColor(b.Style.Text)
	dc.DrawStringAnchored(b.Text, b.Label.X+labelPadX, b.Label.Y+b.Label.H/2, 0, 0.5)
}
