package notify

import (
	"context"
	"sync"
	"time"

	"github.com/TimiOdusanya/tourbirth-backend/internal/metrics"
	"go.uber.org/zap"
)

const DefaultSendTimeout = 30 * time.Second

// Message asks for the named template to be rendered with Data and sent to To.
type Message struct {
	To       string
	Template string
	Data     map[string]any
	// Admin routes the message to the admin inbox and the admin alert channel.
	Admin bool
}

type Options struct {
	Workers      int
	QueueSize    int
	AdminAddress string
	// Alerts receives a copy of every admin message when set.
	Alerts      Sender
	SendTimeout time.Duration
}

// Dispatcher delivers notifications off the request path. Delivery failures
// are logged and counted but never reported to the caller.
type Dispatcher struct {
	catalog      *Catalog
	mailer       Sender
	alerts       Sender
	adminAddress string
	timeout      time.Duration
	logger       *zap.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan Message
	wg     sync.WaitGroup
}

func NewDispatcher(catalog *Catalog, mailer Sender, logger *zap.Logger, opts Options) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = DefaultSendTimeout
	}
	d := &Dispatcher{
		catalog:      catalog,
		mailer:       mailer,
		alerts:       opts.Alerts,
		adminAddress: opts.AdminAddress,
		timeout:      opts.SendTimeout,
		logger:       logger,
		queue:        make(chan Message, opts.QueueSize),
	}
	d.wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go d.worker()
	}
	return d
}

// Notify enqueues msg without blocking. A full queue or a closed dispatcher
// drops the message.
func (d *Dispatcher) Notify(msg Message) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.record(msg.Template, "dropped")
		return
	}
	select {
	case d.queue <- msg:
	default:
		d.record(msg.Template, "dropped")
		d.logger.Warn("notification queue full, dropping message",
			zap.String("template", msg.Template),
			zap.String("to", msg.To),
		)
	}
}

// Close stops accepting messages and waits for queued ones to be delivered
// or for ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for msg := range d.queue {
		d.deliver(msg)
	}
}

func (d *Dispatcher) deliver(msg Message) {
	rendered, err := d.catalog.Render(msg.Template, msg.Data)
	if err != nil {
		d.record(msg.Template, "render_error")
		d.logger.Error("failed to render notification", zap.String("template", msg.Template), zap.Error(err))
		return
	}

	to := msg.To
	if msg.Admin {
		to = d.adminAddress
	}
	if to != "" {
		d.send(d.mailer, msg.Template, to, rendered, "sent", "failed")
	}
	if msg.Admin && d.alerts != nil {
		d.send(d.alerts, msg.Template, to, rendered, "alert_sent", "alert_failed")
	}
}

func (d *Dispatcher) send(s Sender, template, to string, rendered *Rendered, ok, failed string) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := s.Send(ctx, to, rendered); err != nil {
		d.record(template, failed)
		d.logger.Error("failed to deliver notification",
			zap.String("template", template),
			zap.String("to", to),
			zap.Error(err),
		)
		return
	}
	d.record(template, ok)
}

func (d *Dispatcher) record(template, result string) {
	metrics.Notifications.WithLabelValues(template, result).Inc()
}

// Recorder collects messages in memory. Tests use it in place of a Dispatcher.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) Notify(msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// ByTemplate returns the recorded messages that used template.
func (r *Recorder) ByTemplate(template string) []Message {
	var out []Message
	for _, m := range r.Messages() {
		if m.Template == template {
			out = append(out, m)
		}
	}
	return out
}
