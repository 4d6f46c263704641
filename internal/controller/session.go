package controller

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/suxatcode/knowledge-graph-view/graph/model"
	"github.com/suxatcode/knowledge-graph-view/interact"
	"github.com/suxatcode/knowledge-graph-view/layout"
	"github.com/suxatcode/knowledge-graph-view/render"
	"github.com/suxatcode/knowledge-graph-view/viewer"
)

var ErrSessionClosed = errors.New("session closed")

// SessionInfo is a summary of one session.
type SessionInfo struct {
	ID            string    `json:"id"`
	KnowledgeBase string    `json:"knowledgeBase"`
	Width         int       `json:"width"`
	Height        int       `json:"height"`
	Nodes         int       `json:"nodes"`
	Edges         int       `json:"edges"`
	Settled       bool      `json:"settled"`
	Selection     string    `json:"selection"`
	Created       time.Time `json:"created"`
	LastUsed      time.Time `json:"lastUsed"`
}

// Session owns one viewer engine. The engine lives on the session's own
// goroutine; every access is a command sent to it, and display refreshes
// are flushed on a ticker in between.
type Session struct {
	id       uuid.UUID
	kbID     string
	created  time.Time
	lastUsed atomic.Int64
	log      zerolog.Logger

	commands chan func(*viewer.Engine)
	done     chan struct{}
	stopped  chan struct{}
	stop     sync.Once

	// owned by the session goroutine
	engine *viewer.Engine
	frames *viewer.FrameQueue
	ticks  int
}

func newSession(kbID string, s *model.Snapshot, width, height int, conf Config, logger zerolog.Logger, now time.Time) (*Session, error) {
	id := uuid.New()
	sess := &Session{
		id:       id,
		kbID:     kbID,
		created:  now,
		log:      logger.With().Str("session", id.String()).Str("kb", kbID).Logger(),
		commands: make(chan func(*viewer.Engine)),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
		frames:   &viewer.FrameQueue{},
	}
	sess.lastUsed.Store(now.UnixNano())
	engine, err := viewer.NewEngine(viewer.Options{
		Layout:   conf.Layout,
		Render:   conf.Render,
		Frames:   sess.frames,
		Listener: interact.SelectionListenerFunc(sess.selectionChanged),
		Logger:   &sess.log,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create engine")
	}
	engine.Resize(width, height)
	engine.SetGraph(s)
	sess.engine = engine
	return sess, nil
}

func (s *Session) ID() string            { return s.id.String() }
func (s *Session) KnowledgeBase() string { return s.kbID }
func (s *Session) Created() time.Time    { return s.created }
func (s *Session) LastUsed() time.Time   { return time.Unix(0, s.lastUsed.Load()) }

func (s *Session) run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(s.stopped)
	for {
		select {
		case cmd := <-s.commands:
			cmd(s.engine)
		case <-ticker.C:
			if s.frames.Flush() > 0 {
				s.ticks++
			}
		case <-s.done:
			if err := s.engine.Close(); err != nil {
				s.log.Error().Msgf("close engine: %v", err)
			}
			s.log.Debug().Int("frames", s.ticks).Msg("session stopped")
			return
		}
	}
}

// do runs fn on the session goroutine and waits for it to finish.
func (s *Session) do(ctx context.Context, fn func(e *viewer.Engine)) error {
	reply := make(chan struct{})
	select {
	case s.commands <- func(e *viewer.Engine) { fn(e); close(reply) }:
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-reply:
		s.lastUsed.Store(time.Now().UnixNano())
		return nil
	case <-s.stopped:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close stops the goroutine and waits for the engine to be released.
func (s *Session) close() {
	s.stop.Do(func() { close(s.done) })
	<-s.stopped
}

func (s *Session) selectionChanged(sel interact.Selection) {
	s.log.Info().Stringer("selection", sel.Kind).Msg("selection changed")
}

func (s *Session) Info(ctx context.Context) (SessionInfo, error) {
	info := SessionInfo{ID: s.ID(), KnowledgeBase: s.kbID, Created: s.created}
	var w, h, nodes, edges int
	var settled bool
	var selection string
	err := s.do(ctx, func(e *viewer.Engine) {
		w, h = e.Size()
		q := e.Quality()
		nodes, edges = q.Nodes, q.Links
		settled = e.Idle()
		selection = e.Selection().Kind.String()
	})
	if err != nil {
		return SessionInfo{}, err
	}
	info.Width, info.Height = w, h
	info.Nodes, info.Edges = nodes, edges
	info.Settled = settled
	info.Selection = selection
	info.LastUsed = s.LastUsed()
	return info, nil
}

// Pointer feeds one pointer event to the engine and returns the cursor to
// show.
func (s *Session) Pointer(ctx context.Context, ev interact.PointerEvent) (interact.Cursor, error) {
	if err := ev.Validate(); err != nil {
		return interact.CursorDefault, err
	}
	var cursor interact.Cursor
	if err := s.do(ctx, func(e *viewer.Engine) { cursor = e.Pointer(ev) }); err != nil {
		return interact.CursorDefault, err
	}
	return cursor, nil
}

// Resize changes the canvas size and, if rect is set, where the canvas is
// displayed.
func (s *Session) Resize(ctx context.Context, width, height int, rect *interact.DisplayRect) error {
	return s.do(ctx, func(e *viewer.Engine) {
		e.Resize(width, height)
		if rect != nil {
			e.SetDisplayRect(*rect)
		}
	})
}

// Frame returns the current picture as PNG.
func (s *Session) Frame(ctx context.Context) ([]byte, error) {
	var encodeErr error
	buf := bytes.Buffer{}
	if err := s.do(ctx, func(e *viewer.Engine) { encodeErr = render.EncodePNG(&buf, e.Frame()) }); err != nil {
		return nil, err
	}
	if encodeErr != nil {
		return nil, errors.Wrap(encodeErr, "encode frame")
	}
	return buf.Bytes(), nil
}

func (s *Session) Selection(ctx context.Context) (viewer.Detail, error) {
	var d viewer.Detail
	if err := s.do(ctx, func(e *viewer.Engine) { d = e.Detail() }); err != nil {
		return viewer.Detail{}, err
	}
	return d, nil
}

func (s *Session) ResetSelection(ctx context.Context) error {
	return s.do(ctx, func(e *viewer.Engine) { e.ResetSelection() })
}

func (s *Session) Placements(ctx context.Context) ([]layout.Placement, error) {
	var p []layout.Placement
	if err := s.do(ctx, func(e *viewer.Engine) { p = e.Placements() }); err != nil {
		return nil, err
	}
	return p, nil
}

// SetGraph replaces the snapshot shown by the session.
func (s *Session) SetGraph(ctx context.Context, snapshot *model.Snapshot) error {
	return s.do(ctx, func(e *viewer.Engine) { e.SetGraph(snapshot) })
}

// WaitSettled blocks until the layout has converged.
func (s *Session) WaitSettled(ctx context.Context, poll time.Duration) error {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for {
		settled := false
		if err := s.do(ctx, func(e *viewer.Engine) { settled = e.Idle() }); err != nil {
			return err
		}
		if settled {
			return nil
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
