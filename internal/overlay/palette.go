package overlay

import (
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Style цвет рамки и цвет текста её подписи.
type Style struct {
	Name string
	Box  color.NRGBA
	Text color.NRGBA
}

type colorRule struct {
	substr string
	style  Style
}

var (
	textWhite = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	textBlack = color.NRGBA{A: 0xff}

	// Порядок правил значим: побеждает первое совпадение.
	colorRules = []colorRule{
		{"blackhead", newStyle("blackhead", "#1f2937", textWhite)},
		{"whitehead", newStyle("whitehead", "#f3f4f6", textBlack)},
		{"papule", newStyle("papule", "#f97316", textWhite)},
		{"pustule", newStyle("pustule", "#ef4444", textWhite)},
		{"nodule", newStyle("nodule", "#7f1d1d", textWhite)},
		{"cyst", newStyle("cyst", "#7f1d1d", textWhite)},
	}

	defaultStyle = newStyle("default", "#3b82f6", textWhite)
)

func newStyle(name, hex string, text color.NRGBA) Style {
	c, err := colorful.Hex(hex)
	if err != nil {
		panic(err)
	}
	r, g, b := c.RGB255()
	return Style{Name: name, Box: color.NRGBA{R: r, G: g, B: b, A: 0xff}, Text: text}
}

// ResolveColor подбирает стиль по подстроке метки без учёта регистра.
func ResolveColor(label string) Style {
	l := strings.ToLower(label)
	for _, rule := range colorRules {
		if strings.Contains(l, rule.substr) {
			return rule.style
		}
	}
	return defaultStyle
}

// Fill возвращает полупрозрачный вариант цвета рамки.
func (s Style) Fill(alpha uint8) color.NRGBA {
	c := s.Box
	c.A = alpha
	return c
}
