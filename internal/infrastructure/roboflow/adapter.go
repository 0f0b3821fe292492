package roboflow

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/spf13/cast"

	"skin-vision-bot/internal/domain/entity"
)

// ErrUnrecognizedPayload ответ не похож ни на один известный формат детектора.
var ErrUnrecognizedPayload = errors.New("unrecognized detection payload")

var (
	listKeys       = []string{"predictions", "detections", "objects", "results"}
	centerXKeys    = []string{"x", "center_x", "cx", "centerX"}
	centerYKeys    = []string{"y", "center_y", "cy", "centerY"}
	widthKeys      = []string{"width", "w"}
	heightKeys     = []string{"height", "h"}
	labelKeys      = []string{"class", "label", "class_name", "name"}
	confidenceKeys = []string{"confidence", "score", "probability"}
)

// Dimensions размеры исходного изображения, как их сообщил сервис.
type Dimensions struct {
	Width  int
	Height int
}

// Predictions нормализованный ответ детектора.
type Predictions struct {
	Detections []entity.Detection
	Image      Dimensions
	Rejected   []error // по одной ошибке на каждую отброшенную запись
}

// NormalizePredictions приводит ответ провайдера к списку entity.Detection.
// Поддерживаются разные имена полей, числа строками и уверенность в процентах.
// Нераспознанные записи отбрасываются по одной; ошибка возвращается, только если
// в ответе нет списка предсказаний.
func NormalizePredictions(payload []byte) (Predictions, error) {
	var root map[string]any
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(&root); err != nil {
		return Predictions{}, fmt.Errorf("%w: %v", ErrUnrecognizedPayload, err)
	}

	items, ok := findList(root)
	if !ok {
		return Predictions{}, ErrUnrecognizedPayload
	}

	out := Predictions{
		Detections: make([]entity.Detection, 0, len(items)),
		Image:      imageDimensions(root),
	}
	for i, raw := range items {
		obj, ok := raw.(map[string]any)
		if !ok {
			out.Rejected = append(out.Rejected, fmt.Errorf("prediction %d: %w: not an object", i, ErrUnrecognizedPayload))
			continue
		}
		d, err := normalizeOne(obj)
		if err != nil {
			out.Rejected = append(out.Rejected, fmt.Errorf("prediction %d: %w", i, err))
			continue
		}
		out.Detections = append(out.Detections, d)
	}
	return out, nil
}

// findList ищет массив предсказаний на верхнем уровне или во вложенном объекте.
func findList(root map[string]any) ([]any, bool) {
	for _, k := range listKeys {
		if v, ok := root[k]; ok {
			if list, ok := v.([]any); ok {
				return list, true
			}
			if nested, ok := v.(map[string]any); ok {
				return findList(nested)
			}
		}
	}
	return nil, false
}

func normalizeOne(obj map[string]any) (entity.Detection, error) {
	var d entity.Detection
	var err error
	if d.CenterX, err = number(obj, centerXKeys); err != nil {
		return d, err
	}
	if d.CenterY, err = number(obj, centerYKeys); err != nil {
		return d, err
	}
	if d.Width, err = number(obj, widthKeys); err != nil {
		return d, err
	}
	if d.Height, err = number(obj, heightKeys); err != nil {
		return d, err
	}
	if d.Confidence, err = number(obj, confidenceKeys); err != nil {
		return d, err
	}
	if d.Confidence > 1 && d.Confidence <= 100 {
		d.Confidence /= 100
	}
	for _, k := range labelKeys {
		if v, ok := obj[k]; ok {
			d.Label = cast.ToString(v)
			break
		}
	}
	if d.Label == "" {
		return d, fmt.Errorf("%w: missing class label", ErrUnrecognizedPayload)
	}
	return d, nil
}

func number(obj map[string]any, keys []string) (float64, error) {
	for _, k := range keys {
		v, ok := obj[k]
		if !ok {
			continue
		}
		if n, ok := v.(json.Number); ok {
			v = n.String()
		}
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return 0, fmt.Errorf("%w: field %q: %v", ErrUnrecognizedPayload, k, err)
		}
		return f, nil
	}
	return 0, fmt.Errorf("%w: missing field %q", ErrUnrecognizedPayload, keys[0])
}

func imageDimensions(root map[string]any) Dimensions {
	img, ok := root["image"].(map[string]any)
	if !ok {
		return Dimensions{}
	}
	w, _ := number(img, widthKeys)
	h, _ := number(img, heightKeys)
	return Dimensions{Width: int(w), Height: int(h)}
}

// probeDimensions читает размеры из заголовка снимка, не декодируя пиксели.
func probeDimensions(data []byte) (Dimensions, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Dimensions{}, err
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}
