package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

const maxTelegramMessageLen = 4096

type DigestEntry struct {
	Message   string
	Timestamp time.Time
}

// DigestBuffer collects admin notices and sends them as one message per interval.
// It satisfies the same GoAdmin contract as Dispatcher, so callers do not know which one they hold.
type DigestBuffer struct {
	mu       sync.Mutex
	entries  []DigestEntry
	interval time.Duration
	out      *Dispatcher
	stopCh   chan struct{}
	done     chan struct{}
}

func NewDigestBuffer(out *Dispatcher, interval time.Duration) *DigestBuffer {
	return &DigestBuffer{
		interval: interval,
		out:      out,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (d *DigestBuffer) GoAdmin(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = append(d.entries, DigestEntry{
		Message:   msg,
		Timestamp: time.Now(),
	})
}

func (d *DigestBuffer) StartTicker() {
	go func() {
		defer close(d.done)
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				d.Flush()
			case <-d.stopCh:
				d.Flush() // final flush
				return
			}
		}
	}()
}

// Flush sends everything buffered so far; it blocks until delivery finishes or fails.
func (d *DigestBuffer) Flush() {
	d.mu.Lock()
	snapshot := d.entries
	d.entries = nil
	d.mu.Unlock()

	if len(snapshot) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), d.out.budget())
	defer cancel()
	for _, part := range splitMessage(formatDigest(snapshot), maxTelegramMessageLen) {
		_ = d.out.NotifyAdmin(ctx, part)
	}
}

func (d *DigestBuffer) Stop() {
	close(d.stopCh)
	<-d.done
}

func formatDigest(entries []DigestEntry) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Digest (%d events)\n\n", len(entries)))
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("%s %s\n", e.Timestamp.Format("15:04"), e.Message))
	}
	return sb.String()
}

func splitMessage(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}
	var parts []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			parts = append(parts, text)
			break
		}
		// Try to split at newline
		cutAt := maxLen
		nlIdx := strings.LastIndex(text[:maxLen], "\n")
		if nlIdx > 0 {
			cutAt = nlIdx + 1
		}
		parts = append(parts, text[:cutAt])
		text = text[cutAt:]
	}
	return parts
}
