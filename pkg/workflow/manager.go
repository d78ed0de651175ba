package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
)

var (
	ErrInvalidSchedule  = errors.New("invalid schedule")
	ErrAlreadyScheduled = errors.New("flow already scheduled")
)

// RunFunc executes the flow with the given id.
type RunFunc func(ctx context.Context, flowID string) error

// Schedule runs a flow on a standard five field cron expression or an @descriptor.
type Schedule struct {
	FlowID string
	Cron   string
}

// ParseSchedule reads a schedule written as "<flow id>=<cron expression>".
func ParseSchedule(s string) (Schedule, error) {
	flowID, expr, ok := strings.Cut(s, "=")
	flowID, expr = strings.TrimSpace(flowID), strings.TrimSpace(expr)

	if !ok || flowID == "" || expr == "" {
		return Schedule{}, fmt.Errorf("%w: %q, expected <flow id>=<cron expression>", ErrInvalidSchedule, s)
	}

	sched := Schedule{FlowID: flowID, Cron: expr}

	return sched, sched.Validate()
}

func (s Schedule) Validate() error {
	if s.FlowID == "" {
		return fmt.Errorf("%w: flow id is required", ErrInvalidSchedule)
	}

	if _, err := cron.ParseStandard(s.Cron); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}

	return nil
}

type scheduled struct {
	schedule Schedule
	entryID  cron.EntryID
}

// Manager runs flows on their schedules. Runs of the same flow never overlap.
type Manager struct {
	cron   *cron.Cron
	run    RunFunc
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	schedules map[string]scheduled
}

func NewManager(run RunFunc, logger *slog.Logger) *Manager {
	logger = logger.With("module", "flow_scheduler")
	ctx, cancel := context.WithCancel(context.Background())
	cronLog := cronLogger{logger: logger}

	return &Manager{
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cronLog),
			cron.Recover(cronLog),
		)),
		run:       run,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		schedules: make(map[string]scheduled),
	}
}

// Add schedules a flow. A flow has at most one schedule.
func (m *Manager) Add(s Schedule) error {
	if err := s.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.schedules[s.FlowID]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyScheduled, s.FlowID)
	}

	entryID, err := m.cron.AddFunc(s.Cron, func() { m.runJob(s.FlowID) })
	if err != nil {
		return fmt.Errorf("failed to add cron job for flow %s: %w", s.FlowID, err)
	}

	m.schedules[s.FlowID] = scheduled{schedule: s, entryID: entryID}
	m.logger.Info("Scheduled flow", "flow_id", s.FlowID, "cron", s.Cron)

	return nil
}

// Remove unschedules a flow and reports whether it had a schedule.
func (m *Manager) Remove(flowID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.schedules[flowID]
	if !ok {
		return false
	}

	m.cron.Remove(entry.entryID)
	delete(m.schedules, flowID)
	m.logger.Info("Unscheduled flow", "flow_id", flowID)

	return true
}

// Schedules returns the active schedules ordered by flow id.
func (m *Manager) Schedules() []Schedule {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Schedule, 0, len(m.schedules))
	for _, s := range m.schedules {
		out = append(out, s.schedule)
	}

	slices.SortFunc(out, func(a, b Schedule) int { return strings.Compare(a.FlowID, b.FlowID) })

	return out
}

func (m *Manager) Start() {
	m.logger.Info("Starting scheduler", "schedules", len(m.Schedules()))
	m.cron.Start()
}

// Stop prevents new runs, cancels the running ones and waits for them until ctx is done.
func (m *Manager) Stop(ctx context.Context) error {
	done := m.cron.Stop()
	m.cancel()

	select {
	case <-done.Done():
		m.logger.Info("Scheduler stopped")

		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) runJob(flowID string) {
	m.logger.Info("Running scheduled flow", "flow_id", flowID)

	if err := m.run(m.ctx, flowID); err != nil {
		m.logger.Error("Scheduled flow failed", "flow_id", flowID, "error", err)
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
