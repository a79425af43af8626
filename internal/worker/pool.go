package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueEmail = "jobs:email"

	JobFacturaEmail = "factura_email"
)

// ErrQueueDisabled is returned by a Dispatcher that has no Redis client.
var ErrQueueDisabled = errors.New("worker: cola deshabilitada (sin Redis)")

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// FacturaEmailPayload asks the worker to render and mail the invoice of a sale.
type FacturaEmailPayload struct {
	VentaID string `json:"venta_id"`
	Email   string `json:"email"`
}

// JobHandler processes the payload of one job type. A returned error sends
// the job to the dead-letter list.
type JobHandler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueFacturaEmail pushes an invoice email job for a finalized sale.
func (d *Dispatcher) EnqueueFacturaEmail(ctx context.Context, ventaID uuid.UUID, email string) error {
	return d.enqueue(ctx, QueueEmail, JobFacturaEmail, FacturaEmailPayload{
		VentaID: ventaID.String(),
		Email:   email,
	})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	if d == nil || d.rdb == nil {
		return ErrQueueDisabled
	}
	encoded, err := encodeJob(jobType, payload)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

func encodeJob(jobType string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Job{Type: jobType, Payload: data})
}

// defaultBackoff is how long a worker waits after Redis fails before polling again.
const defaultBackoff = 2 * time.Second

// Pool consumes the job queues with a fixed number of goroutines.
type Pool struct {
	rdb      *redis.Client
	handlers map[string]JobHandler
	backoff  time.Duration
	wg       sync.WaitGroup
}

func NewPool(rdb *redis.Client) *Pool {
	return &Pool{rdb: rdb, handlers: make(map[string]JobHandler), backoff: defaultBackoff}
}

// Handle registers the handler for a job type. Must be called before Start.
func (p *Pool) Handle(jobType string, h JobHandler) {
	p.handlers[jobType] = h
}

// Start launches numWorkers goroutines consuming QueueEmail.
// Each goroutine blocks on BRPOP, so idle workers cost no CPU.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.run(ctx, id)
		}(i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

// Wait blocks until every worker returned after ctx was cancelled.
func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) run(ctx context.Context, id int) {
	queues := []string{QueueEmail}
	for {
		if ctx.Err() != nil {
			log.Debug().Int("worker", id).Msg("worker stopped")
			return
		}
		// Blocking pop: waits up to 5s then loops to check ctx
		result, err := p.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
		switch {
		case err == nil:
		case errors.Is(err, redis.Nil), ctx.Err() != nil:
			continue
		default:
			log.Warn().Err(err).Int("worker", id).Dur("backoff", p.backoff).Msg("cola de jobs no disponible")
			select {
			case <-ctx.Done():
			case <-time.After(p.backoff):
			}
			continue
		}
		if len(result) < 2 {
			continue
		}
		p.processJob(ctx, result[0], result[1])
	}
}

func (p *Pool) processJob(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, p.rdb, queue, "", json.RawMessage(fmt.Sprintf("%q", raw)), "payload ilegible", 1)
		return
	}
	h, ok := p.handlers[job.Type]
	if !ok {
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, "tipo de job desconocido", 1)
		return
	}
	if err := h.Process(ctx, job.Payload); err != nil {
		log.Error().Err(err).Str("type", job.Type).Str("queue", queue).Msg("job failed")
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, err.Error(), 1)
		return
	}
	log.Debug().Str("type", job.Type).Str("queue", queue).Msg("job processed")
}
