package overlay

import (
	"image"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"skin-vision-bot/internal/domain/entity"
)

// Source байты снимка и его идентичность, по которой кэшируется декодирование.
type Source struct {
	ID   string
	Data []byte
}

// Session держит последний декодированный снимок, чтобы смена порога или ширины
// не требовала повторного декодирования.
type Session struct {
	renderer *Renderer
	decode   DecodeFunc
	flight   singleflight.Group

	mu         sync.Mutex
	generation uint64
	pendingID  string // снимок, который сейчас декодируется
	imageID    string
	image      image.Image
}

// SessionOption настраивает Session.
type SessionOption func(*Session)

// WithDecoder подменяет декодер снимков.
func WithDecoder(fn DecodeFunc) SessionOption {
	return func(s *Session) {
		if fn != nil {
			s.decode = fn
		}
	}
}

// NewSession создаёт сессию отрисовки поверх renderer.
func NewSession(renderer *Renderer, opts ...SessionOption) *Session {
	s := &Session{renderer: renderer, decode: Decode}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Render рисует src с рамками. Декодирование запускается только при смене src.ID;
// одновременные вызовы с тем же src.ID ждут одного декодирования.
// Вызов с другим снимком вытесняет незавершённое декодирование: его результат
// отбрасывается с ErrSuperseded и не попадает в кэш.
func (s *Session) Render(src Source, dets []entity.Detection, threshold float64, displayWidth int) (*Frame, error) {
	if displayWidth <= 0 {
		return nil, ErrLayoutNotReady
	}

	s.mu.Lock()
	if s.image != nil && s.imageID == src.ID {
		if s.pendingID != "" {
			s.generation++
			s.pendingID = ""
		}
		img := s.image
		s.mu.Unlock()
		return s.renderer.Render(img, dets, threshold, displayWidth)
	}
	if s.pendingID != src.ID {
		s.generation++
		s.pendingID = src.ID
	}
	gen := s.generation
	s.mu.Unlock()

	v, err, _ := s.flight.Do(flightKey(gen, src.ID), func() (any, error) {
		return s.decode(src.Data)
	})

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return nil, ErrSuperseded
	}
	s.pendingID = ""
	if err != nil {
		s.imageID, s.image = "", nil
		s.mu.Unlock()
		return nil, err
	}
	img, _ := v.(image.Image)
	s.imageID, s.image = src.ID, img
	s.mu.Unlock()

	return s.renderer.Render(img, dets, threshold, displayWidth)
}

// flightKey объединяет ожидающих только в пределах одного поколения.
func flightKey(gen uint64, id string) string {
	return strconv.FormatUint(gen, 10) + "/" + id
}

// Reset забывает кэшированный снимок и вытесняет незавершённые декодирования.
func (s *Session) Reset() {
	s.mu.Lock()
	s.generation++
	s.pendingID = ""
	s.imageID, s.image = "", nil
	s.mu.Unlock()
}

// Cached сообщает, закэширован ли снимок с данным идентификатором.
func (s *Session) Cached(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.image != nil && s.imageID == id
}

// CachedID идентификатор закэшированного снимка, если он есть.
func (s *Session) CachedID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.imageID, s.image != nil
}
