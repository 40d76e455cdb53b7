package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// QuestionArchiver is the single store operation the sweep needs.
type QuestionArchiver interface {
	ArchiveOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Archiver retires aged questions on a fixed cadence. Each firing issues
// one bulk conditional update; a failed sweep is logged and the next tick
// retries the same predicate.
type Archiver struct {
	questions QuestionArchiver
	interval  time.Duration
	maxAge    time.Duration
	log       *zap.SugaredLogger
	stop      chan struct{}
	done      chan struct{}
}

func NewArchiver(questions QuestionArchiver, interval, maxAge time.Duration, log *zap.SugaredLogger) *Archiver {
	return &Archiver{
		questions: questions,
		interval:  interval,
		maxAge:    maxAge,
		log:       log,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (a *Archiver) Start() {
	go a.run()
}

// Stop ends the sweep loop and waits for it to finish.
func (a *Archiver) Stop() {
	close(a.stop)
	<-a.done
}

func (a *Archiver) run() {
	defer close(a.done)
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.Sweep(context.Background())
		case <-a.stop:
			return
		}
	}
}

// Sweep archives every question older than the threshold. Exposed so tests
// can drive a cycle without waiting on the ticker.
func (a *Archiver) Sweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, a.interval)
	defer cancel()
	n, err := a.questions.ArchiveOlderThan(ctx, time.Now().UTC().Add(-a.maxAge))
	if err != nil {
		a.log.Errorw("archive sweep", "err", err)
		return
	}
	if n > 0 {
		a.log.Infow("archive sweep", "archived", n)
	}
}
