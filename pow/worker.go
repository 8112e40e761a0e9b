package pow

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-shardchain/inter"
)

// State of a mining worker.
type State uint32

const (
	Idle State = iota
	Searching
	Found
	Appended
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Searching:
		return "searching"
	case Found:
		return "found"
	case Appended:
		return "appended"
	default:
		return "unknown"
	}
}

type (
	// Chain is the ledger as seen by a worker.
	Chain interface {
		// Template snapshots the shard tip. The returned channel is closed
		// when the tip moves on and the template goes stale.
		Template(shardID uint32) (Template, <-chan struct{}, error)
		// AppendMined links a mined block onto the shard.
		AppendMined(b *inter.Block) error
	}

	// Announcer publishes appended blocks to peers.
	Announcer interface {
		Announce(b *inter.Block)
	}
)

// WorkerConfig tunes a worker.
type WorkerConfig struct {
	// Timeout bounds one search. Zero means no bound.
	Timeout time.Duration
	// RetryDelay is the pause after a failed template request.
	RetryDelay time.Duration
}

// DefaultWorkerConfig returns the worker defaults.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		Timeout:    time.Minute,
		RetryDelay: 100 * time.Millisecond,
	}
}

// Worker repeatedly mines on top of one shard's tip.
type Worker struct {
	shardID   uint32
	chain     Chain
	announcer Announcer
	cfg       WorkerConfig
	log       logrus.FieldLogger

	state uint32

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorker builds a stopped worker. announcer may be nil.
func NewWorker(shardID uint32, chain Chain, announcer Announcer, cfg WorkerConfig, log logrus.FieldLogger) *Worker {
	return &Worker{
		shardID:   shardID,
		chain:     chain,
		announcer: announcer,
		cfg:       cfg,
		log:       log.WithField("shard", shardID),
	}
}

// State returns the current state.
func (w *Worker) State() State {
	return State(atomic.LoadUint32(&w.state))
}

func (w *Worker) setState(s State) {
	atomic.StoreUint32(&w.state, uint32(s))
}

// Start launches the mining loop. It is a no-op on a running worker.
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return
	}
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.loop(ctx)
	}()
}

// Stop cancels the running search and waits for the loop to exit.
func (w *Worker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	w.wg.Wait()
	w.setState(Idle)
}

func (w *Worker) loop(ctx context.Context) {
	w.log.Debug("Mining worker started")
	defer w.log.Debug("Mining worker stopped")
	for ctx.Err() == nil {
		if err := w.MineOnce(ctx); err != nil && ctx.Err() == nil {
			w.log.WithError(err).Warn("Mining round failed")
			select {
			case <-ctx.Done():
			case <-time.After(w.cfg.RetryDelay):
			}
		}
	}
}

// MineOnce runs a single Idle -> Searching -> Found -> Appended round. An
// abandoned search is not an error; template failures and searches that
// cannot succeed are returned.
func (w *Worker) MineOnce(ctx context.Context) error {
	w.setState(Idle)
	tmpl, stale, err := w.chain.Template(w.shardID)
	if err != nil {
		return err
	}

	searchCtx, cancel := w.searchContext(ctx)
	defer cancel()
	go func() {
		select {
		case <-stale:
			cancel()
		case <-searchCtx.Done():
		}
	}()

	w.setState(Searching)
	start := time.Now()
	b, err := Mine(searchCtx, tmpl)
	if err != nil {
		w.setState(Idle)
		if ctx.Err() == nil && searchCtx.Err() == nil {
			searches.WithLabelValues("failed").Inc()
			return err
		}
		result := "cancelled"
		if errors.Is(err, context.DeadlineExceeded) {
			result = "timeout"
		}
		searches.WithLabelValues(result).Inc()
		w.log.WithFields(logrus.Fields{"height": tmpl.Height, "reason": result}).Debug("Search abandoned")
		return nil
	}
	searchDuration.Observe(time.Since(start).Seconds())
	searches.WithLabelValues("found").Inc()

	w.setState(Found)
	if err := w.chain.AppendMined(b); err != nil {
		// lost the race against an inbound block
		w.setState(Idle)
		w.log.WithFields(logrus.Fields{"height": b.Height, "hash": b.Hash}).WithError(err).Debug("Mined block not appended")
		return nil
	}
	w.setState(Appended)

	if w.announcer != nil {
		w.announcer.Announce(b)
	}
	return nil
}

func (w *Worker) searchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if w.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, w.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}
