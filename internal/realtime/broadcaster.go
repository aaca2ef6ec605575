package realtime

import (
	"encoding/json"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var publishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "lingkod_realtime_publish_failures_total",
	Help: "Real-time events dropped because publishing failed.",
}, []string{"reason"})

// transport is the slice of the NATS connection the broadcaster uses.
// *nats.Conn satisfies it; tests substitute a stub.
type transport interface {
	Publish(subj string, data []byte) error
}

// envelope is the wire format delivered to subscribers.
type envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// Broadcaster fans out UI refresh events over NATS. Delivery is
// best-effort and at-most-once: failures are logged and counted, never
// returned, and nothing is retried. Callers must not rely on delivery
// for correctness.
type Broadcaster struct {
	conn   *nats.Conn
	tr     transport
	logger zerolog.Logger
}

// Connect dials NATS and returns a Broadcaster bound to the connection.
func Connect(url string, logger zerolog.Logger) (*Broadcaster, error) {
	nc, err := nats.Connect(url, nats.Name("lingkod"))
	if err != nil {
		return nil, err
	}
	return &Broadcaster{conn: nc, tr: nc, logger: logger}, nil
}

// Close drains the connection so buffered events get a chance to flush.
func (b *Broadcaster) Close() {
	if b == nil || b.conn == nil {
		return
	}
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
	}
}

// Publish sends event with payload on the named channel. A nil
// Broadcaster silently drops everything, which keeps the service usable
// without a NATS endpoint configured.
func (b *Broadcaster) Publish(channel, event string, payload any) {
	if b == nil || b.tr == nil || channel == "" || event == "" {
		return
	}

	data, err := json.Marshal(envelope{Event: event, Payload: payload})
	if err != nil {
		publishFailures.WithLabelValues("marshal").Inc()
		b.logger.Warn().Err(err).Str("channel", channel).Str("event", event).Msg("drop realtime event")
		return
	}

	if err := b.tr.Publish(SubjectFor(channel), data); err != nil {
		publishFailures.WithLabelValues("publish").Inc()
		b.logger.Warn().Err(err).Str("channel", channel).Str("event", event).Msg("drop realtime event")
	}
}
