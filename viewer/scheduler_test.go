package viewer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScheduler(t *testing.T) {
	for _, test := range []struct {
		Name      string
		Run       func(s *Scheduler, q *FrameQueue)
		ExpSteps  int
		ExpActive bool
	}{
		{
			Name: "runs until the step is done",
			Run: func(s *Scheduler, q *FrameQueue) {
				s.Start()
				for i := 0; i < 10; i++ {
					q.Flush()
				}
			},
			ExpSteps: 3,
		},
		{
			Name: "one step per frame",
			Run: func(s *Scheduler, q *FrameQueue) {
				s.Start()
				q.Flush()
				q.Flush()
			},
			ExpSteps:  2,
			ExpActive: true,
		},
		{
			Name: "restart replaces the pending frame",
			Run: func(s *Scheduler, q *FrameQueue) {
				s.Start()
				s.Start()
				s.Start()
				q.Flush()
			},
			ExpSteps:  1,
			ExpActive: true,
		},
		{
			Name: "stop cancels the pending frame",
			Run: func(s *Scheduler, q *FrameQueue) {
				s.Start()
				s.Stop()
				q.Flush()
				q.Flush()
			},
			ExpSteps: 0,
		},
		{
			Name:     "never started",
			Run:      func(s *Scheduler, q *FrameQueue) { q.Flush() },
			ExpSteps: 0,
		},
	} {
		t.Run(test.Name, func(t *testing.T) {
			q := &FrameQueue{}
			steps := 0
			s := NewScheduler(q, func() bool {
				steps++
				return steps < 3
			})
			test.Run(s, q)
			assert := assert.New(t)
			assert.Equal(test.ExpSteps, steps)
			assert.Equal(test.ExpActive, s.Running())
		})
	}
}

func TestFrameQueue(t *testing.T) {
	assert := assert.New(t)
	q := &FrameQueue{}
	calls := []string{}
	q.RequestFrame(func() {
		calls = append(calls, "a")
		q.RequestFrame(func() { calls = append(calls, "c") })
	})
	q.RequestFrame(func() { calls = append(calls, "b") })
	assert.Equal(2, q.Pending())
	assert.Equal(2, q.Flush())
	assert.Equal([]string{"a", "b"}, calls, "frames requested while flushing wait")
	assert.Equal(1, q.Pending())
	assert.Equal(1, q.Flush())
	assert.Equal([]string{"a", "b", "c"}, calls)
	assert.Equal(0, q.Flush())
}
