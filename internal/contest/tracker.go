package contest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"refcontest/entity"
	"refcontest/internal/metrics"
	"refcontest/lib/clock"
	"refcontest/lib/sl"
)

const defaultWriteTimeout = 10 * time.Second

type RegisterRequest struct {
	UserID      int64
	DisplayName string
	Handle      string
	// Code is the deep-link payload the user arrived with, empty for a plain start.
	Code string
}

type TrackerConfig struct {
	Cap          int
	WriteTimeout time.Duration
}

// Tracker registers participants and attributes referrals.
type Tracker struct {
	store    Store
	monitor  *Monitor
	subs     SubscriptionChecker
	notifier Notifier
	admin    AdminNotices
	events   EventPublisher
	metrics  *metrics.Metrics
	clock    clock.Clock
	log      *slog.Logger

	cap          int
	writeTimeout time.Duration
}

func NewTracker(
	conf TrackerConfig,
	store Store,
	monitor *Monitor,
	subs SubscriptionChecker,
	notifier Notifier,
	admin AdminNotices,
	events EventPublisher,
	m *metrics.Metrics,
	clk clock.Clock,
	log *slog.Logger,
) *Tracker {
	if conf.WriteTimeout <= 0 {
		conf.WriteTimeout = defaultWriteTimeout
	}
	if admin == nil {
		admin = notifier
	}
	if clk == nil {
		clk = clock.Real
	}
	return &Tracker{
		store:        store,
		monitor:      monitor,
		subs:         subs,
		notifier:     notifier,
		admin:        admin,
		events:       events,
		metrics:      m,
		clock:        clk,
		log:          log.With(sl.Module("contest.tracker")),
		cap:          conf.Cap,
		writeTimeout: conf.WriteTimeout,
	}
}

// registration is what one committed write unit did.
type registration struct {
	created  bool
	referrer *entity.Participant
	count    int
}

// Register handles a start command. The returned outcome is always one of the four kinds;
// failures are reported through it, never as a panic or a silent drop.
func (t *Tracker) Register(ctx context.Context, req RegisterRequest) entity.Outcome {
	ctx, span := tracer.Start(ctx, "contest.Register")
	defer span.End()
	span.SetAttributes(attribute.Int64("user_id", req.UserID))

	log := t.log.With(
		slog.String("attempt", uuid.NewString()),
		sl.UserID(req.UserID),
	)
	if id := traceID(span); id != "" {
		log = log.With(slog.String("trace_id", id))
	}

	outcome := t.register(ctx, log, req)
	span.SetAttributes(attribute.String("outcome", outcome.Kind.String()))
	if outcome.Kind == entity.OutcomeStorageError {
		span.SetStatus(codes.Error, "storage error")
	}
	t.metrics.Registration(outcome.Kind.String())
	return outcome
}

func (t *Tracker) register(ctx context.Context, log *slog.Logger, req RegisterRequest) entity.Outcome {
	// a failed probe is logged by the monitor and does not block registration
	ended, _, _ := t.monitor.CheckAndMaybeEnd(ctx, t.cap)
	if ended {
		log.Debug("contest ended, registration skipped")
		return t.outcome(entity.OutcomeContestEnded, req.UserID)
	}

	res, err := t.write(ctx, req)
	if err != nil {
		log.Error("registration write", sl.Err(err))
		return t.outcome(entity.OutcomeStorageError, req.UserID)
	}

	if res.created {
		log.With(
			slog.String("name", entity.DisplayName(req.UserID, req.DisplayName, req.Handle)),
		).Info("participant registered")
		t.events.Publish(ctx, entity.Event{
			ID:     uuid.NewString(),
			Type:   entity.EventParticipantRegistered,
			UserID: req.UserID,
			At:     t.clock(),
		})
	}
	if res.referrer != nil {
		t.announceReferral(ctx, log, req, res)
	}

	if !t.subs.IsSubscribed(ctx, req.UserID) {
		return t.outcome(entity.OutcomeNeedsSubscription, req.UserID)
	}
	return t.outcome(entity.OutcomeWelcomed, req.UserID)
}

// write applies the participant upsert and the optional referral as one transaction.
// It runs detached from the caller so an abandoned request cannot cut it short.
func (t *Tracker) write(ctx context.Context, req RegisterRequest) (*registration, error) {
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.writeTimeout)
	defer cancel()

	var res registration
	err := t.store.Atomically(wctx, func(ctx context.Context, tx Tx) error {
		res = registration{}
		now := t.clock()
		created, err := tx.UpsertParticipant(ctx, &entity.Participant{
			UserID:      req.UserID,
			DisplayName: req.DisplayName,
			Handle:      req.Handle,
			JoinedAt:    now,
		})
		if err != nil {
			return fmt.Errorf("upsert participant: %w", err)
		}
		res.created = created

		referrerID, ok := ParseReferralCode(req.Code)
		if !ok || referrerID == req.UserID {
			return nil
		}
		referrer, err := tx.GetParticipant(ctx, referrerID)
		if err != nil {
			return fmt.Errorf("get referrer: %w", err)
		}
		if referrer == nil {
			return nil
		}
		attributed, err := tx.AttributeReferral(ctx, &entity.ReferralEdge{
			ReferredUserID: req.UserID,
			ReferrerUserID: referrerID,
			CreatedAt:      now,
		})
		if err != nil {
			return fmt.Errorf("attribute referral: %w", err)
		}
		if !attributed {
			return nil
		}
		count, err := tx.IncrementReferrals(ctx, referrerID)
		if err != nil {
			return fmt.Errorf("increment referrals: %w", err)
		}
		res.referrer = referrer
		res.count = count
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrStorage) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return &res, nil
}

func (t *Tracker) announceReferral(ctx context.Context, log *slog.Logger, req RegisterRequest, res *registration) {
	name := entity.DisplayName(req.UserID, req.DisplayName, req.Handle)
	log.With(
		slog.Int64("referrer", res.referrer.UserID),
		slog.Int("count", res.count),
	).Info("referral attributed")

	t.metrics.Referral()
	t.notifier.Go(res.referrer.UserID, fmt.Sprintf(
		"🎉 New referral: %s!\nYou now have %d invitations.", name, res.count))
	t.admin.GoAdmin(fmt.Sprintf("👥 %s invited %s (%d total)", res.referrer.Name(), name, res.count))
	t.events.Publish(ctx, entity.Event{
		ID:         uuid.NewString(),
		Type:       entity.EventReferralAttributed,
		UserID:     req.UserID,
		ReferrerID: res.referrer.UserID,
		Count:      res.count,
		At:         t.clock(),
	})
}

// Recheck answers the "check subscription" button without touching storage.
func (t *Tracker) Recheck(ctx context.Context, userID int64) entity.Outcome {
	if t.monitor.state.IsEnded() {
		return t.outcome(entity.OutcomeContestEnded, userID)
	}
	if !t.subs.IsSubscribed(ctx, userID) {
		return t.outcome(entity.OutcomeNeedsSubscription, userID)
	}
	return t.outcome(entity.OutcomeWelcomed, userID)
}

// Stats returns the personal view of a participant; Participant is nil for unknown users.
func (t *Tracker) Stats(ctx context.Context, userID int64) (entity.ParticipantStats, error) {
	stats := entity.ParticipantStats{
		Code:      ReferralCode(userID),
		Remaining: t.monitor.Remaining(t.cap),
	}
	p, err := t.store.GetParticipant(ctx, userID)
	if err != nil {
		return stats, fmt.Errorf("%w: get participant: %w", ErrStorage, err)
	}
	if p == nil {
		return stats, nil
	}
	stats.Participant = p
	stats.Rank, err = t.store.RankOf(ctx, userID)
	if err != nil {
		return stats, fmt.Errorf("%w: rank: %w", ErrStorage, err)
	}
	return stats, nil
}

func (t *Tracker) outcome(kind entity.OutcomeKind, userID int64) entity.Outcome {
	o := entity.Outcome{
		Kind:      kind,
		Remaining: t.monitor.Remaining(t.cap),
		Cap:       t.cap,
	}
	if kind == entity.OutcomeWelcomed {
		o.Code = ReferralCode(userID)
	}
	return o
}
