package entity

import "math"

// Detection одна рамка, найденная внешним детектором, в пикселях исходного изображения.
// Значение неизменяемое: его только фильтруют и пересчитывают для показа.
type Detection struct {
	CenterX    float64 // координата X центра рамки
	CenterY    float64 // координата Y центра рамки
	Width      float64 // ширина рамки
	Height     float64 // высота рамки
	Label      string  // тип поражения, например "Papule"
	Confidence float64 // уверенность модели в [0, 1]
}

// Valid сообщает, что геометрия рамки конечна и размеры положительны.
func (d Detection) Valid() bool {
	for _, v := range [...]float64{d.CenterX, d.CenterY, d.Width, d.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return d.Width > 0 && d.Height > 0
}

// TopLeft возвращает левый верхний угол рамки.
func (d Detection) TopLeft() (x, y float64) {
	return d.CenterX - d.Width/2, d.CenterY - d.Height/2
}
