package viewer

// FrameRequester runs a callback once, at the next display refresh.
type FrameRequester interface {
	RequestFrame(func())
}

// Scheduler drives a step function once per frame until it reports that it
// is done. Restarting invalidates the frame still pending from the previous
// run, so at most one loop is ever live.
type Scheduler struct {
	frames     FrameRequester
	step       func() bool
	generation uint64
	running    bool
}

// NewScheduler returns a stopped scheduler. step returns whether another
// frame is needed.
func NewScheduler(frames FrameRequester, step func() bool) *Scheduler {
	return &Scheduler{frames: frames, step: step}
}

// Start (re)starts the loop with the next frame.
func (s *Scheduler) Start() {
	s.generation++
	s.running = true
	s.schedule(s.generation)
}

// Stop cancels the loop; a frame already requested becomes a no-op.
func (s *Scheduler) Stop() {
	s.generation++
	s.running = false
}

func (s *Scheduler) Running() bool {
	return s.running
}

func (s *Scheduler) schedule(generation uint64) {
	s.frames.RequestFrame(func() { s.tick(generation) })
}

func (s *Scheduler) tick(generation uint64) {
	if generation != s.generation {
		return
	}
	if s.step() {
		s.schedule(generation)
		return
	}
	s.running = false
}

// FrameQueue is a FrameRequester for hosts without a display refresh of
// their own: callbacks queue up until the host calls Flush. It is meant to
// be used from a single goroutine.
type FrameQueue struct {
	pending []func()
}

func (q *FrameQueue) RequestFrame(f func()) {
	q.pending = append(q.pending, f)
}

// Flush runs the callbacks requested before the call and returns how many
// ran. Callbacks requested while flushing wait for the next Flush.
func (q *FrameQueue) Flush() int {
	current := q.pending
	q.pending = nil
	for _, f := range current {
		f()
	}
	return len(current)
}

func (q *FrameQueue) Pending() int {
	return len(q.pending)
}
