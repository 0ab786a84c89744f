// Package notify delivers best-effort messages (admin alerts, referral notices) with a fixed retry policy.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"refcontest/internal/metrics"
	"refcontest/lib/sl"
)

var ErrNotificationFailed = errors.New("notification failed")

const (
	DefaultAttempts = 3
	DefaultDelay    = 2 * time.Second
	sendTimeout     = 15 * time.Second
)

// Sender is the transport primitive, implemented by the Telegram bot.
type Sender interface {
	SendMessage(ctx context.Context, chatId int64, text string) error
}

type Config struct {
	AdminID  int64
	Attempts int
	Delay    time.Duration
}

// Dispatcher sends messages through a Sender, retrying each one a bounded number of times.
// Failures are logged at warn level and returned; they never panic out of the dispatcher.
type Dispatcher struct {
	sender   Sender
	adminID  int64
	attempts int
	delay    time.Duration
	log      *slog.Logger
	metrics  *metrics.Metrics

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(sender Sender, conf Config, m *metrics.Metrics, log *slog.Logger) *Dispatcher {
	if conf.Attempts < 1 {
		conf.Attempts = DefaultAttempts
	}
	if conf.Delay < 0 {
		conf.Delay = DefaultDelay
	}
	return &Dispatcher{
		sender:   sender,
		adminID:  conf.AdminID,
		attempts: conf.Attempts,
		delay:    conf.Delay,
		log:      log.With(sl.Module("notify")),
		metrics:  m,
	}
}

// Notify delivers msg to recipient, making up to the configured number of attempts
// with a fixed delay between them. It returns the last error once attempts are exhausted.
func (d *Dispatcher) Notify(ctx context.Context, recipient int64, msg string) error {
	if msg == "" {
		return nil
	}
	var err error
	for attempt := 1; attempt <= d.attempts; attempt++ {
		if err = d.send(ctx, recipient, msg); err == nil {
			d.metrics.NotificationSent()
			return nil
		}
		d.log.With(
			sl.UserID(recipient),
			slog.Int("attempt", attempt),
		).Warn("notification attempt failed", sl.Err(err))
		if attempt == d.attempts {
			break
		}
		timer := time.NewTimer(d.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			err = ctx.Err()
			attempt = d.attempts
		case <-timer.C:
		}
	}
	d.metrics.NotificationFailed()
	d.log.With(sl.UserID(recipient)).Warn("notification dropped", sl.Err(err))
	return fmt.Errorf("%w: recipient %d: %w", ErrNotificationFailed, recipient, err)
}

func (d *Dispatcher) NotifyAdmin(ctx context.Context, msg string) error {
	if d.adminID == 0 {
		return nil
	}
	return d.Notify(ctx, d.adminID, msg)
}

// Go delivers msg in the background; Wait or Close block until pending deliveries finish.
func (d *Dispatcher) Go(recipient int64, msg string) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.log.With(sl.UserID(recipient)).Debug("dispatcher closed, message skipped")
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.budget())
		defer cancel()
		_ = d.Notify(ctx, recipient, msg)
	}()
}

func (d *Dispatcher) GoAdmin(msg string) {
	if d.adminID == 0 {
		return
	}
	d.Go(d.adminID, msg)
}

func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Close rejects new background deliveries and waits for the pending ones.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) budget() time.Duration {
	return time.Duration(d.attempts)*(sendTimeout+d.delay) + time.Second
}

func (d *Dispatcher) send(ctx context.Context, recipient int64, msg string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sender panic: %v", r)
		}
	}()
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	return d.sender.SendMessage(ctx, recipient, msg)
}
