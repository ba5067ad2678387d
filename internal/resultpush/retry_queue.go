package resultpush

import "time"

// retryQueue feeds failed webhook deliveries back into the dispatch
// channel once their backoff delay expires. The timer goroutine does
// the channel send, so Enqueue never blocks the worker that reported
// the failure.
type retryQueue struct {
	out  chan<- pushJob
	done <-chan struct{}
}

func newRetryQueue(out chan<- pushJob, done <-chan struct{}) *retryQueue {
	return &retryQueue{out: out, done: done}
}

// Enqueue schedules job to re-enter dispatch after delay. Once done is
// closed the redelivery is dropped rather than sent to a channel no
// worker drains anymore.
func (q *retryQueue) Enqueue(job pushJob, delay time.Duration) {
	if delay < 0 {
		delay = 0
	}
	time.AfterFunc(delay, func() { q.redeliver(job) })
}

func (q *retryQueue) redeliver(job pushJob) {
	select {
	case <-q.done:
	case q.out <- job:
		metricPushQueueLen.Set(int64(len(q.out)))
	}
}
