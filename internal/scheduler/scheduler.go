package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskherald/taskherald/internal/domain"
	"github.com/taskherald/taskherald/internal/notifier"
	"github.com/taskherald/taskherald/internal/platform/logger"
	"github.com/taskherald/taskherald/internal/store"
)

// Config holds the claim-and-process loop settings.
type Config struct {
	// PollInterval is the fixed delay between ticks.
	PollInterval time.Duration

	// GraceHours bounds how far in the past a trigger instant may lie and
	// still be acted on. Anything older is treated as missed.
	GraceHours int

	// MaxPerTick caps how many tasks a single tick may process.
	MaxPerTick int

	// SendTimeout bounds one delivery attempt so a hung send cannot stall
	// the tick. A timed out send counts as retryable.
	SendTimeout time.Duration
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		PollInterval: time.Minute,
		GraceHours:   24,
		MaxPerTick:   50,
		SendTimeout:  10 * time.Second,
	}
}

// claimOrder is the candidate priority each poll walks: closings first, then
// initial reminders, then pre-due warnings.
var claimOrder = []store.CandidateKind{
	store.CandidateDueClosing,
	store.CandidateInitialReminder,
	store.CandidatePreDue,
}

// Scheduler runs the polling tick against the task store.
type Scheduler struct {
	tasks      store.TaskStore
	notifier   notifier.Notifier
	config     Config
	logger     *slog.Logger
	runTx      func(ctx context.Context, fn store.TxFn) error
	now        func() time.Time
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// New creates a Scheduler. The db handle is used to open the short claim
// transactions; tasks must be the store bound to the same database.
func New(
	db *sql.DB,
	tasks store.TaskStore,
	n notifier.Notifier,
	config Config,
	log *slog.Logger,
) *Scheduler {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultConfig().PollInterval
	}
	if config.MaxPerTick <= 0 {
		config.MaxPerTick = DefaultConfig().MaxPerTick
	}
	if log == nil {
		log = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		tasks:    tasks,
		notifier: n,
		config:   config,
		logger:   log.With(slog.String("component", "scheduler")),
		runTx: func(ctx context.Context, fn store.TxFn) error {
			return store.RunInTransaction(ctx, db, fn)
		},
		now:        time.Now,
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start launches the polling loop in a background goroutine.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
}

// Stop cancels the polling loop and waits for the in-flight tick to finish.
func (s *Scheduler) Stop() {
	s.cancelFunc()
	s.wg.Wait()
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	s.logger.Info("scheduler started",
		slog.Duration("poll_interval", s.config.PollInterval),
		slog.Int("grace_hours", s.config.GraceHours),
		slog.Int("max_per_tick", s.config.MaxPerTick))

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Info("scheduler stopped")
			return

		case <-ticker.C:
			s.Tick(s.ctx)
		}
	}
}

// Tick runs one claim-and-process pass: up to MaxPerTick tasks, one claim
// transaction each, stopping early once no claimable task remains. Store
// failures abort the pass; the next tick retries from scratch, there is no
// in-memory queue state to corrupt.
func (s *Scheduler) Tick(ctx context.Context) {
	log := s.logger.With(slog.String("tick_id", uuid.New().String()))
	ctx = logger.WithLogger(ctx, log)

	now := s.now().UTC()
	graceStart := now.Add(-time.Duration(s.config.GraceHours) * time.Hour)

	// Tasks whose delivery failed retryably this pass. They stay claimable,
	// so without this the earliest failing row would be re-claimed and
	// re-sent until MaxPerTick; it retries on the next tick instead.
	skip := make(map[int64]struct{})

	processed := 0
	for processed < s.config.MaxPerTick {
		ok, err := s.processOne(ctx, now, graceStart, skip)
		if err != nil {
			log.Error("tick aborted",
				slog.Int("processed", processed),
				slog.String("error", err.Error()))
			return
		}
		if !ok {
			break
		}
		processed++
	}

	if processed > 0 {
		log.Debug("tick finished", slog.Int("processed", processed))
	}
}

// processOne claims at most one task and handles its owed stage. It reports
// whether a task was handled; false ends the pass. Closings commit inside the
// claim transaction since they need no external call. Reminder stages commit
// the claim first, deliver outside the transaction boundary, then record the
// outcome with a conditional write, so a concurrent poller racing the mark
// costs at most a duplicate send, never a lost one.
func (s *Scheduler) processOne(
	ctx context.Context,
	now time.Time,
	graceStart time.Time,
	skip map[int64]struct{},
) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var task *domain.Task
	var stage domain.Stage

	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		for _, kind := range claimOrder {
			claimed, err := txTasks.ClaimDue(ctx, kind, now, graceStart, 1+len(skip))
			if err != nil {
				return err
			}
			for _, c := range claimed {
				if _, skipped := skip[c.ID]; skipped {
					continue
				}
				task = c
				break
			}
			if task == nil {
				continue
			}

			stage = task.NextAction(now)
			if stage.Kind == domain.StageCloseDue {
				applied, err := txTasks.MarkClosed(ctx, task.ID, now)
				if err != nil {
					return err
				}
				if !applied {
					log.Debug("close already applied by another poller",
						slog.Int64("task_id", task.ID))
				}
			}
			return nil
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if task == nil {
		return false, nil
	}

	log = log.With(
		slog.Int64("task_id", task.ID),
		slog.String("stage", string(stage.Kind)))

	switch stage.Kind {
	case domain.StageCloseDue:
		log.Info("closed due task")
		return true, nil

	case domain.StageNone:
		// The claim queries only surface rows owing a stage; a residual
		// None means the row changed between claim and resolve. Releasing
		// it and ending the pass avoids spinning on it.
		log.Warn("claimed task owes no action, releasing")
		return false, nil
	}

	if err := s.deliver(ctx, log, task, stage, now, skip); err != nil {
		return false, err
	}
	return true, nil
}

// deliver sends one notification and records the outcome. Returned errors are
// store failures only; delivery failures are classified and absorbed here,
// with retryable ones added to skip so the pass moves on to other tasks.
func (s *Scheduler) deliver(
	ctx context.Context,
	log *slog.Logger,
	task *domain.Task,
	stage domain.Stage,
	now time.Time,
	skip map[int64]struct{},
) error {
	sendCtx, cancel := context.WithTimeout(ctx, s.config.SendTimeout)
	defer cancel()

	sentAt, err := s.notifier.Send(sendCtx, task, stage)
	if err != nil {
		if notifier.IsPermanent(err) {
			log.Warn("permanent delivery failure, canceling task",
				slog.String("error", err.Error()))
			applied, cancelErr := s.tasks.CancelForNonRetryable(ctx, task.ID, now)
			if cancelErr != nil {
				return cancelErr
			}
			if !applied {
				log.Debug("cancel not applied, task already left PENDING")
			}
			return nil
		}

		// Retryable: leave the task untouched; a later tick retries until
		// the grace window expires.
		log.Warn("retryable delivery failure",
			slog.String("error", err.Error()))
		skip[task.ID] = struct{}{}
		return nil
	}

	sentAt = sentAt.UTC()
	var applied bool
	switch stage.Kind {
	case domain.StageInitialReminder:
		applied, err = s.tasks.MarkNotified(ctx, task.ID, sentAt)
	case domain.StagePreDueReminder:
		applied, err = s.tasks.MarkPreNotified(ctx, task.ID, stage.Hours, sentAt)
	}
	if err != nil {
		return err
	}
	if !applied {
		log.Debug("stage already recorded by another poller")
	} else {
		log.Info("notification delivered", slog.Time("sent_at", sentAt))
	}
	return nil
}
