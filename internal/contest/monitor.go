package contest

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	"refcontest/entity"
	"refcontest/internal/metrics"
	"refcontest/lib/clock"
	"refcontest/lib/sl"
)

const probeKey = "member_count"

// Monitor watches the external member count and ends the contest once it reaches the cap.
// It runs on a fixed interval and is also called inline before every registration.
type Monitor struct {
	state    *State
	counter  MemberCounter
	notifier Notifier
	events   EventPublisher
	metrics  *metrics.Metrics
	clock    clock.Clock
	log      *slog.Logger

	cap       int
	interval  time.Duration
	retry     time.Duration
	probes    singleflight.Group
	lastCount atomic.Int64

	mu           sync.Mutex
	scheduler    gocron.Scheduler
	retryPending bool
}

type MonitorConfig struct {
	Cap           int
	PollInterval  time.Duration
	// RetryInterval schedules one extra poll after a failed probe; it is capped by PollInterval.
	RetryInterval time.Duration
}

func NewMonitor(
	conf MonitorConfig,
	state *State,
	counter MemberCounter,
	notifier Notifier,
	events EventPublisher,
	m *metrics.Metrics,
	clk clock.Clock,
	log *slog.Logger,
) *Monitor {
	if conf.PollInterval <= 0 {
		conf.PollInterval = time.Hour
	}
	if conf.RetryInterval <= 0 || conf.RetryInterval > conf.PollInterval {
		conf.RetryInterval = min(10*time.Minute, conf.PollInterval)
	}
	if clk == nil {
		clk = clock.Real
	}
	return &Monitor{
		state:    state,
		counter:  counter,
		notifier: notifier,
		events:   events,
		metrics:  m,
		clock:    clk,
		log:      log.With(sl.Module("contest.monitor")),
		cap:      conf.Cap,
		interval: conf.PollInterval,
		retry:    conf.RetryInterval,
	}
}

func (m *Monitor) Cap() int {
	return m.cap
}

// LastCount is the member count seen by the most recent successful probe.
func (m *Monitor) LastCount() int {
	return int(m.lastCount.Load())
}

// Remaining is the number of free slots under limit according to the last probe, never negative.
func (m *Monitor) Remaining(limit int) int {
	r := limit - m.LastCount()
	if r < 0 {
		return 0
	}
	return r
}

// CheckAndMaybeEnd probes the member count and ends the contest when it reaches limit.
// An already ended contest short-circuits without an external call. A probe failure
// leaves the contest active and is returned as err.
func (m *Monitor) CheckAndMaybeEnd(ctx context.Context, limit int) (bool, int, error) {
	if m.state.IsEnded() {
		return true, m.LastCount(), nil
	}

	ctx, span := tracer.Start(ctx, "contest.CheckAndMaybeEnd")
	defer span.End()

	count, err := m.probe(ctx)
	if err != nil {
		m.metrics.ProbeFailed()
		span.RecordError(err)
		span.SetStatus(codes.Error, "probe failed")
		m.log.Warn("member count probe failed", sl.Err(err))
		return false, 0, err
	}
	span.SetAttributes(attribute.Int("member_count", count), attribute.Int("cap", limit))

	if count < limit {
		return false, count, nil
	}

	did, err := m.state.TryEnd(ctx)
	if err != nil {
		span.RecordError(err)
		m.log.Error("ending contest", sl.Err(err))
		return false, count, err
	}
	if did {
		m.metrics.Ended()
		m.log.With(
			slog.Int("count", count),
			slog.Int("cap", limit),
		).Info("cap reached")
		m.notifier.GoAdmin(fmt.Sprintf(
			"🏆 Contest finished: %d participants reached (cap %d).", count, limit))
		m.events.Publish(ctx, entity.Event{
			ID:    uuid.NewString(),
			Type:  entity.EventContestEnded,
			Count: count,
			At:    m.clock(),
		})
	}
	return true, count, nil
}

// probe collapses concurrent callers onto one external request.
func (m *Monitor) probe(ctx context.Context) (int, error) {
	ch := m.probes.DoChan(probeKey, func() (interface{}, error) {
		// detached so one caller giving up does not fail the others sharing the call
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		return m.counter.CurrentMemberCount(pctx)
	})
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return 0, res.Err
		}
		count := res.Val.(int)
		m.lastCount.Store(int64(count))
		m.metrics.ObserveMembers(count)
		return count, nil
	}
}

// Poll is one timer tick: refresh the cached state, then run the cap check.
// A failed probe alerts the admin and, while the scheduler runs, checks again after the retry interval.
func (m *Monitor) Poll(ctx context.Context) {
	if err := m.state.Refresh(ctx); err != nil {
		m.log.Error("refresh contest state", sl.Err(err))
	}
	if m.state.IsEnded() {
		return
	}
	_, count, err := m.CheckAndMaybeEnd(ctx, m.cap)
	if err != nil {
		m.notifier.GoAdmin("⚠️ Member count check failed: " + err.Error())
		m.scheduleRetry()
		return
	}
	m.log.With(
		slog.Int("count", count),
		slog.Int("cap", m.cap),
	).Debug("poll")
}

func (m *Monitor) pollTask() {
	ctx, cancel := context.WithTimeout(context.Background(), m.interval)
	defer cancel()
	m.Poll(ctx)
}

// scheduleRetry adds a one-time poll; at most one retry is pending at a time.
func (m *Monitor) scheduleRetry() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scheduler == nil || m.retryPending {
		return
	}
	at := time.Now().Add(m.retry)
	_, err := m.scheduler.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(at)),
		gocron.NewTask(func() {
			m.mu.Lock()
			m.retryPending = false
			m.mu.Unlock()
			m.pollTask()
		}),
		gocron.WithName("cap-monitor-retry"),
	)
	if err != nil {
		m.log.Warn("scheduling retry", sl.Err(err))
		return
	}
	m.retryPending = true
	m.log.With(slog.String("in", m.retry.String())).Info("member count check rescheduled")
}

// Start schedules Poll every poll interval; the job never overlaps itself.
func (m *Monitor) Start() error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}
	// registered before the first run so a failing first poll can schedule its retry
	m.mu.Lock()
	m.scheduler = s
	m.mu.Unlock()

	_, err = s.NewJob(
		gocron.DurationJob(m.interval),
		gocron.NewTask(m.pollTask),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("cap-monitor"),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		m.mu.Lock()
		m.scheduler = nil
		m.mu.Unlock()
		_ = s.Shutdown()
		return fmt.Errorf("scheduling cap monitor: %w", err)
	}
	s.Start()
	m.log.With(
		slog.String("interval", m.interval.String()),
		slog.String("retry", m.retry.String()),
		slog.String("cap", strconv.Itoa(m.cap)),
	).Info("cap monitor started")
	return nil
}

func (m *Monitor) Stop() {
	m.mu.Lock()
	s := m.scheduler
	m.scheduler = nil
	m.retryPending = false
	m.mu.Unlock()
	if s == nil {
		return
	}
	if err := s.Shutdown(); err != nil {
		m.log.Warn("stopping scheduler", sl.Err(err))
	}
}
