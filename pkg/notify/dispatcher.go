package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Job builds an email on a worker. It may call other services; ctx carries
// the per-job timeout.
type Job func(ctx context.Context) (Email, error)

type task struct {
	name  string
	build Job
}

// Dispatcher sends emails on a fixed pool of workers. Dispatch never blocks
// the caller; build and send failures are logged and dropped.
type Dispatcher struct {
	mailer  Mailer
	log     zerolog.Logger
	timeout time.Duration

	queue chan task
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// DispatcherOptions 分发器参数
type DispatcherOptions struct {
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
}

// NewDispatcher starts the workers.
func NewDispatcher(mailer Mailer, log zerolog.Logger, opts DispatcherOptions) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 20 * time.Second
	}

	d := &Dispatcher{
		mailer:  mailer,
		log:     log,
		timeout: opts.SendTimeout,
		queue:   make(chan task, opts.QueueSize),
	}
	for i := 0; i < opts.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for t := range d.queue {
		d.run(t)
	}
}

func (d *Dispatcher) run(t task) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	email, err := t.build(ctx)
	if err != nil {
		d.log.Error().Err(err).Str("job", t.name).Msg("email notification not built")
		return
	}
	id, err := d.mailer.Send(ctx, email)
	if err != nil {
		d.log.Error().Err(err).Str("subject", email.Subject).Msg("email notification failed")
		return
	}
	d.log.Debug().Str("id", id).Str("subject", email.Subject).Msg("email sent")
}

// Dispatch enqueues email. It returns false when the queue is full or closed.
func (d *Dispatcher) Dispatch(email Email) bool {
	return d.enqueue(task{name: email.Subject, build: func(context.Context) (Email, error) {
		return email, nil
	}})
}

// DispatchJob enqueues a job whose email is built on the worker, so lookups
// it needs run off the caller's goroutine. name only labels log lines.
func (d *Dispatcher) DispatchJob(name string, job Job) bool {
	return d.enqueue(task{name: name, build: job})
}

func (d *Dispatcher) enqueue(t task) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn().Str("job", t.name).Msg("dispatcher closed, email dropped")
		return false
	}
	select {
	case d.queue <- t:
		return true
	default:
		d.log.Warn().Str("job", t.name).Msg("notification queue full, email dropped")
		return false
	}
}

// Close stops accepting emails and waits for queued ones until ctx is done.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
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
