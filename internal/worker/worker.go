package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Helper-Yoon/sns-help-counter/internal/queue"
	"github.com/Helper-Yoon/sns-help-counter/internal/tracker"
)

// Worker drains the webhook event stream and runs each delivery through the
// tracking pipeline.
type Worker struct {
	queue       *queue.RedisQueue
	processor   *tracker.Processor
	concurrency int
	batchSize   int
}

func New(q *queue.RedisQueue, processor *tracker.Processor, concurrency, batchSize int) *Worker {
	return &Worker{
		queue:       q,
		processor:   processor,
		concurrency: concurrency,
		batchSize:   batchSize,
	}
}

func (w *Worker) Start(ctx context.Context) error {
	log.Printf("Starting worker with concurrency=%d, batchSize=%d", w.concurrency, w.batchSize)

	jobs := make(chan queue.Message, w.concurrency*2)
	var wg sync.WaitGroup

	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			w.processJobs(ctx, workerID, jobs)
		}(i)
	}

	go func() {
		defer close(jobs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				messages, err := w.queue.Consume(ctx, int64(w.batchSize), 5*time.Second)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					log.Printf("Error consuming messages: %v", err)
					time.Sleep(time.Second)
					continue
				}

				for _, msg := range messages {
					select {
					case jobs <- msg:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	wg.Wait()
	return nil
}

func (w *Worker) processJobs(ctx context.Context, workerID int, jobs <-chan queue.Message) {
	for msg := range jobs {
		outcome, err := w.processor.ProcessEvent(ctx, msg.Event)
		if err != nil {
			// Leave the entry pending; a later consumer retries it.
			log.Printf("Worker %d: error processing %s: %v", workerID, msg.ID, err)
			continue
		}

		if outcome.Ignored {
			log.Printf("Worker %d: ignored %s: %s", workerID, msg.ID, outcome.Reason)
		}

		if err := w.queue.Ack(ctx, msg.ID); err != nil {
			log.Printf("Worker %d: error acking %s: %v", workerID, msg.ID, err)
		}
	}
}
