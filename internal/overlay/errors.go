package overlay

import "errors"

var (
	// ErrImageDecode исходные байты не удалось декодировать; отрисовка прерывается целиком.
	ErrImageDecode = errors.New("image decode failed")
	// ErrLayoutNotReady ширина поверхности ещё не известна; отрисовку нужно отложить.
	ErrLayoutNotReady = errors.New("layout not ready: display width is zero")
	// ErrSuperseded декодирование завершилось после более нового вызова и отброшено.
	ErrSuperseded = errors.New("render superseded by a newer image")
)
