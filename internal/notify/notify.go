// Package notify emits the user-facing events of the core.
// Delivery is fire-and-forget: a failing sink is logged and never reported back.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/MrSnakeDoc/moraka/internal/logger"
)

// Notifier receives the three semantic events of the core.
type Notifier interface {
	ListingPosted(title, city string)
	RequestInitiated(title string)
	UserWelcomed(name string)
}

// Event kinds, also used as NATS subject suffixes.
const (
	KindListingPosted    = "listing.posted"
	KindRequestInitiated = "request.initiated"
	KindUserWelcomed     = "user.welcomed"
)

// Event is the wire form of a notification.
type Event struct {
	Kind    string    `json:"kind"`
	Title   string    `json:"title,omitempty"`
	City    string    `json:"city,omitempty"`
	Name    string    `json:"name,omitempty"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

func listingPosted(title, city string) Event {
	return Event{
		Kind:    KindListingPosted,
		Title:   title,
		City:    city,
		Message: fmt.Sprintf("%q is now available in %s", title, city),
		At:      time.Now(),
	}
}

func requestInitiated(title string) Event {
	return Event{
		Kind:    KindRequestInitiated,
		Title:   title,
		Message: fmt.Sprintf("Your request for %q has been sent", title),
		At:      time.Now(),
	}
}

func userWelcomed(name string) Event {
	return Event{
		Kind:    KindUserWelcomed,
		Name:    name,
		Message: fmt.Sprintf("Welcome to Moraka, %s!", name),
		At:      time.Now(),
	}
}

// ─────────────────────────────────────────────────────────────────
// Log sink
// ─────────────────────────────────────────────────────────────────

// LogNotifier writes every event as a structured log line.
type LogNotifier struct {
	logger logger.Logger
}

func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{logger: log}
}

func (n *LogNotifier) emit(e Event) {
	n.logger.Info("notification",
		logger.String("kind", e.Kind),
		logger.String("message", e.Message))
}

func (n *LogNotifier) ListingPosted(title, city string) { n.emit(listingPosted(title, city)) }
func (n *LogNotifier) RequestInitiated(title string)    { n.emit(requestInitiated(title)) }
func (n *LogNotifier) UserWelcomed(name string)         { n.emit(userWelcomed(name)) }

// ─────────────────────────────────────────────────────────────────
// NATS sink
// ─────────────────────────────────────────────────────────────────

// Publisher is the subset of *nats.Conn used by NATSNotifier.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSNotifier publishes events as JSON on "<prefix>.<kind>".
type NATSNotifier struct {
	pub    Publisher
	prefix string
	logger logger.Logger
}

func NewNATSNotifier(pub Publisher, prefix string, log logger.Logger) *NATSNotifier {
	if prefix == "" {
		prefix = "moraka"
	}
	return &NATSNotifier{pub: pub, prefix: prefix, logger: log}
}

// Connect dials a NATS server with a bounded connect timeout.
func Connect(ctx context.Context, url string) (*nats.Conn, error) {
	opts := []nats.Option{nats.Name("moraka")}
	if deadline, ok := ctx.Deadline(); ok {
		opts = append(opts, nats.Timeout(time.Until(deadline)))
	}
	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats at %s: %w", url, err)
	}
	return conn, nil
}

func (n *NATSNotifier) emit(e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		n.logger.Warn("failed to marshal notification", logger.Error(err))
		return
	}
	subject := n.prefix + "." + e.Kind
	if err := n.pub.Publish(subject, data); err != nil {
		n.logger.Warn("failed to publish notification",
			logger.String("subject", subject),
			logger.Error(err))
	}
}

func (n *NATSNotifier) ListingPosted(title, city string) { n.emit(listingPosted(title, city)) }
func (n *NATSNotifier) RequestInitiated(title string)    { n.emit(requestInitiated(title)) }
func (n *NATSNotifier) UserWelcomed(name string)         { n.emit(userWelcomed(name)) }

// ─────────────────────────────────────────────────────────────────
// Fan-out
// ─────────────────────────────────────────────────────────────────

// Multi forwards every event to each notifier in order.
type Multi []Notifier

func (m Multi) ListingPosted(title, city string) {
	for _, n := range m {
		n.ListingPosted(title, city)
	}
}

func (m Multi) RequestInitiated(title string) {
	for _, n := range m {
		n.RequestInitiated(title)
	}
}

func (m Multi) UserWelcomed(name string) {
	for _, n := range m {
		n.UserWelcomed(name)
	}
}
