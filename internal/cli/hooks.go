package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/traitforge/pkg/observability"
)

// logHooks reports library events to the CLI logger at debug level.
type logHooks struct {
	logger *log.Logger
}

func registerHooks(l *log.Logger) {
	h := logHooks{logger: l}
	observability.SetGenerationHooks(h)
	observability.SetRenderHooks(h)
	observability.SetStoreHooks(h)
}

func (h logHooks) OnGenerateStart(_ context.Context, size int) {
	h.logger.Debug("generation started", "size", size)
}

func (h logHooks) OnGenerateComplete(_ context.Context, size, attempts int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("generation failed", "size", size, "attempts", attempts, "err", err)
		return
	}
	h.logger.Debug("generation complete", "size", size, "attempts", attempts, "elapsed", d.Round(time.Millisecond))
}

func (h logHooks) OnJobStart(_ context.Context, id int) {
	h.logger.Debug("job started", "id", id)
}

func (h logHooks) OnRetry(_ context.Context, id, attempt int, err error) {
	h.logger.Debug("job retry", "id", id, "attempt", attempt, "err", err)
}

func (h logHooks) OnJobComplete(_ context.Context, id, attempts int, d time.Duration, err error) {
	h.logger.Debug("job finished", "id", id, "attempts", attempts, "elapsed", d.Round(time.Millisecond), "ok", err == nil)
}

func (h logHooks) OnLoad(_ context.Context, backend, kind string, hit bool, err error) {
	h.logger.Debug("store load", "backend", backend, "kind", kind, "hit", hit, "err", err)
}

func (h logHooks) OnSave(_ context.Context, backend, kind string, err error) {
	h.logger.Debug("store save", "backend", backend, "kind", kind, "err", err)
}
