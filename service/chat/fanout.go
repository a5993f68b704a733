package chat

type fanoutJob struct {
	conns   []*Client
	payload []byte
}

// Fanout pushes payloads to sets of connections through a small worker pool.
// Slow clients are skipped, never waited on; the per-connection Send queue is
// the only buffering between the relay and the wire.
type Fanout struct {
	jobs chan fanoutJob
}

func NewFanout(workers, queue int) *Fanout {
	if workers <= 0 {
		workers = 1
	}
	f := &Fanout{jobs: make(chan fanoutJob, queue)}
	for i := 0; i < workers; i++ {
		go func() {
			for job := range f.jobs {
				for _, c := range job.conns {
					c.TrySend(job.payload)
				}
			}
		}()
	}
	return f
}

// Broadcast enqueues one payload for a set of connections.
func (f *Fanout) Broadcast(conns []*Client, payload []byte) {
	if len(conns) == 0 || len(payload) == 0 {
		return
	}
	f.jobs <- fanoutJob{conns: conns, payload: payload}
}

// Close stops the workers after the queued jobs drain.
func (f *Fanout) Close() {
	close(f.jobs)
}
