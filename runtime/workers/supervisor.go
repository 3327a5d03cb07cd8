package workers

import (
	"chat-relay/contract"
	"chat-relay/errors"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const waitTimeBeforeRestart = 200 * time.Millisecond

// Supervisor owns a context and its cancel function.
// Long-lived workers (listener, heartbeat, debug server) are restarted after a panic,
// while a returned error is fatal and stops everything.
// Session workers are spawned detached: they are never restarted and their
// failure never reaches the other workers.
type Supervisor struct {
	mu       sync.Mutex
	cancel   context.CancelFunc
	wg       *sync.WaitGroup // long-lived workers
	sessions *sync.WaitGroup // spawned workers
	log      *slog.Logger
	workers  []contract.Worker
	errOnce  sync.Once
	err      error
}

func NewSupervisor(log *slog.Logger) *Supervisor {
	return &Supervisor{wg: &sync.WaitGroup{}, sessions: &sync.WaitGroup{}, log: log}
}

// Run starts every added worker and blocks until all of them returned.
// It returns the first fatal worker error, nil on a clean stop.
func (s *Supervisor) Run(ctx context.Context) error {
	supervisedCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	for _, worker := range s.workers {
		s.Start(supervisedCtx, worker)
	}
	s.wg.Wait()
	return s.err
}

func (s *Supervisor) Add(worker ...contract.Worker) contract.ISupervisor {
	s.workers = append(s.workers, worker...)
	return s
}

// Start runs a long-lived worker under supervision.
func (s *Supervisor) Start(ctx context.Context, worker contract.Worker) {
	s.wg.Add(1)
	workerName := contract.GetWorkerName(worker)

	go func() {
		defer s.wg.Done()

		for {
			if ctx.Err() != nil {
				s.log.Info(fmt.Sprintf("Stopping : %s", workerName))
				return
			}

			err := protect(ctx, worker)

			if err == nil {
				// Terminated properly, never restart !
				s.log.Info(fmt.Sprintf("Worker finished : %s", workerName))
				return
			}

			if ctx.Err() != nil {
				s.log.Info("Worker stopped (context canceled)", "name", workerName)
				return
			}

			if !errors.IsWorkerPanic(err) {
				s.log.Error("Worker failed, stopping", "name", workerName, "error", err)
				s.fail(err)
				return
			}

			s.log.Warn("Worker crashed, restarting", "name", workerName, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(waitTimeBeforeRestart):
			}
		}
	}()
}

// Spawn runs worker once in its own goroutine, tracked by Wait.
// Errors and panics are logged and go no further.
func (s *Supervisor) Spawn(ctx context.Context, worker contract.Worker) {
	s.sessions.Add(1)
	go func() {
		defer s.sessions.Done()
		err := protect(ctx, worker)
		switch {
		case err == nil:
		case errors.IsWorkerPanic(err):
			s.log.Error("Spawned worker panicked", "name", contract.GetWorkerName(worker), "error", err)
		default:
			s.log.Debug("Spawned worker ended with error", "name", contract.GetWorkerName(worker), "error", err)
		}
	}()
}

// Stop cancels every supervised and spawned worker.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// Wait blocks until spawned workers are done or timeout elapsed.
// It reports whether all of them finished in time.
func (s *Supervisor) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		s.sessions.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (s *Supervisor) fail(err error) {
	s.errOnce.Do(func() {
		s.err = err
	})
	s.Stop()
}

func protect(ctx context.Context, worker contract.Worker) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errors.ErrWorkerPanic, r)
		}
	}()
	return worker.Run(ctx)
}
