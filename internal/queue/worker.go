package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/image-marker-mcp/internal/marker"
)

// Reader is the consuming side of a kafka.Reader.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Writer is the producing side of a kafka.Writer.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Submitter runs marking requests asynchronously.
type Submitter interface {
	Submit(ctx context.Context, req marker.Request) <-chan marker.Outcome
}

// Options configures a Worker.
type Options struct {
	OutputDir string
	// InFlight bounds how many fetched jobs may await their outcome.
	InFlight int
	// PublishTimeout bounds each result write.
	PublishTimeout time.Duration
}

// Worker consumes jobs, runs them and publishes results. Offsets are
// committed in fetch order, each only after its result is published.
type Worker struct {
	reader  Reader
	writer  Writer
	service Submitter
	opts    Options
	log     logrus.FieldLogger
}

func NewWorker(r Reader, w Writer, s Submitter, opts Options, log logrus.FieldLogger) *Worker {
	if opts.InFlight <= 0 {
		opts.InFlight = 4
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = 10 * time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Worker{reader: r, writer: w, service: s, opts: opts, log: log}
}

type pending struct {
	msg     kafka.Message
	outcome <-chan marker.Outcome
}

// Run processes messages until ctx is cancelled or the reader fails. Jobs
// already fetched are finished before Run returns.
func (w *Worker) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	queue := make(chan pending, w.opts.InFlight)
	published := make(chan error, 1)

	go func() {
		published <- w.publishLoop(queue, cancel)
	}()

	fetchErr := w.fetchLoop(ctx, queue)
	close(queue)
	pubErr := <-published

	if errors.Is(fetchErr, context.Canceled) || errors.Is(fetchErr, context.DeadlineExceeded) {
		fetchErr = nil
	}
	return errors.Join(fetchErr, pubErr)
}

func (w *Worker) fetchLoop(ctx context.Context, queue chan<- pending) error {
	for {
		msg, err := w.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}

		w.log.WithFields(logrus.Fields{
			"topic":     msg.Topic,
			"partition": msg.Partition,
			"offset":    msg.Offset,
		}).Debug("job received")

		// Submitted jobs run to completion even after ctx is cancelled.
		queue <- pending{msg: msg, outcome: w.submit(context.WithoutCancel(ctx), msg)}
	}
}

// submit starts the job in msg. Malformed jobs complete immediately with an
// error outcome so they are still answered and committed.
func (w *Worker) submit(ctx context.Context, msg kafka.Message) <-chan marker.Outcome {
	job, err := ParseJob(msg.Value)
	if err == nil && job.ID == "" {
		job.ID = string(msg.Key)
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}

	var req marker.Request
	if err == nil {
		req, err = job.Request(w.opts.OutputDir)
	}
	if err != nil {
		out := make(chan marker.Outcome, 1)
		out <- marker.Outcome{ID: job.ID, Err: err}
		close(out)
		return out
	}
	return w.service.Submit(ctx, req)
}

// publishLoop answers jobs in fetch order. After a failed publish or commit
// it stops fetching and drains the remaining jobs without answering them, so
// they are redelivered.
func (w *Worker) publishLoop(queue <-chan pending, stop context.CancelFunc) error {
	var failed error
	for p := range queue {
		outcome := <-p.outcome
		if failed != nil {
			continue
		}
		if err := w.publish(p.msg, resultOf(outcome)); err != nil {
			w.log.WithError(err).Error("stopping worker")
			failed = err
			stop()
		}
	}
	return failed
}

func (w *Worker) publish(msg kafka.Message, res Result) error {
	entry := w.log.WithField("job", res.ID)
	if res.ErrorKind != "" {
		entry.WithFields(logrus.Fields{"kind": res.ErrorKind, "error": res.Error}).Warn("job failed")
	} else {
		entry.WithField("path", res.Path).Info("job completed")
	}

	value, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.opts.PublishTimeout)
	defer cancel()

	if err := w.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(res.ID),
		Value: value,
		Time:  time.Now(),
	}); err != nil {
		return fmt.Errorf("failed to publish result %s: %w", res.ID, err)
	}
	if err := w.reader.CommitMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to commit offset %d: %w", msg.Offset, err)
	}
	return nil
}

// Close closes the reader and writer.
func (w *Worker) Close() error {
	return errors.Join(w.reader.Close(), w.writer.Close())
}
