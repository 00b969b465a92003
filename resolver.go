package mdstyle

import (
	"slices"
	"sync"

	"go.uber.org/zap"
)

// resolution tracks the concurrent fetches of one conversion.
// results has one slot per placeholder index; each slot is written once,
// under mu, by the task owning that index.
type resolution struct {
	mu      sync.Mutex
	results []*Attachment
	wg      sync.WaitGroup
	logger  *zap.Logger
}

// resolveImages starts one goroutine per placeholder and returns at once.
func resolveImages(placeholders []ImagePlaceholder, maxWidth float64, handler ImageHandler, logger *zap.Logger) *resolution {
	r := &resolution{
		results: make([]*Attachment, len(placeholders)),
		logger:  logger,
	}
	r.wg.Add(len(placeholders))
	for _, ph := range placeholders {
		go r.fetch(ph, maxWidth, handler)
	}
	return r
}

// fetch runs handler for one placeholder. Only the first callback counts,
// and a panicking handler resolves its slot to nil.
func (r *resolution) fetch(ph ImagePlaceholder, maxWidth float64, handler ImageHandler) {
	var once sync.Once
	settle := func(att *Attachment) {
		once.Do(func() {
			r.mu.Lock()
			r.results[ph.Index] = att
			r.mu.Unlock()

			if att == nil {
				r.logger.Debug("image resolved to fallback", zap.Int("index", ph.Index), zap.String("url", ph.URL))
			} else {
				r.logger.Debug("image resolved", zap.Int("index", ph.Index), zap.String("url", ph.URL),
					zap.Float64("width", att.Bounds.Width), zap.Float64("height", att.Bounds.Height))
			}
			r.wg.Done()
		})
	}

	defer func() {
		if p := recover(); p != nil {
			r.logger.Warn("image handler panicked", zap.String("url", ph.URL), zap.Any("panic", p))
			settle(nil)
		}
	}()

	handler(ph.URL, maxWidth, settle)
}

// wait blocks until every placeholder has settled and returns the results
// indexed by placeholder index.
func (r *resolution) wait() []*Attachment {
	r.wg.Wait()
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.results)
}
