package phases

import (
	"log/slog"
	"time"
)

// LogObserver records phase lifecycle events with slog.
type LogObserver struct {
	logger  *slog.Logger
	now     func() time.Time
	started map[string]time.Time
}

// NewLogObserver returns an observer writing to logger. A nil logger
// falls back to slog.Default.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{
		logger:  logger,
		now:     time.Now,
		started: make(map[string]time.Time),
	}
}

func (o *LogObserver) PhaseStarted(meta PhaseMetadata) {
	o.started[meta.ID] = o.now()
	o.logger.Info("phase started", "phase", meta.ID)
}

func (o *LogObserver) PhaseCompleted(meta PhaseMetadata, err error) {
	attrs := []any{"phase", meta.ID}
	if start, ok := o.started[meta.ID]; ok {
		attrs = append(attrs, "duration", o.now().Sub(start))
		delete(o.started, meta.ID)
	}
	if err != nil {
		o.logger.Error("phase failed", append(attrs, "error", err)...)
		return
	}
	o.logger.Info("phase completed", attrs...)
}

// ObserverFunc allows using functions for Observer callbacks.
type ObserverFunc struct {
	OnStart    func(meta PhaseMetadata)
	OnComplete func(meta PhaseMetadata, err error)
}

func (o ObserverFunc) PhaseStarted(meta PhaseMetadata) {
	if o.OnStart != nil {
		o.OnStart(meta)
	}
}

func (o ObserverFunc) PhaseCompleted(meta PhaseMetadata, err error) {
	if o.OnComplete != nil {
		o.OnComplete(meta, err)
	}
}
