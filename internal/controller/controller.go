package controller

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/suxatcode/knowledge-graph-view/db"
	"github.com/suxatcode/knowledge-graph-view/layout"
	"github.com/suxatcode/knowledge-graph-view/render"
	"github.com/tidwall/btree"
)

var ErrSessionNotFound = errors.New("session not found")

type Config struct {
	// FrameInterval is the display refresh period of every session.
	FrameInterval time.Duration
	// IdleTimeout closes sessions not used for this long, zero disables.
	IdleTimeout time.Duration
	Layout      layout.ForceSimulationConfig
	Render      render.Options
}

var DefaultConfig = Config{
	FrameInterval: 16 * time.Millisecond,
	IdleTimeout:   10 * time.Minute,
	Layout:        layout.DefaultForceSimulationConfig,
	Render:        render.DefaultOptions,
}

// Controller opens viewer sessions on knowledge graphs of a db.Source and
// keeps them in a registry ordered by id.
type Controller struct {
	source   db.Source
	conf     Config
	sessions *btree.BTreeG[*Session]
	timeNow  func() time.Time
}

func sessionLess(a, b *Session) bool {
	return a.ID() < b.ID()
}

func NewController(source db.Source, conf Config) *Controller {
	if conf.FrameInterval <= 0 {
		conf.FrameInterval = DefaultConfig.FrameInterval
	}
	return &Controller{
		source:   source,
		conf:     conf,
		sessions: btree.NewBTreeG[*Session](sessionLess),
		timeNow:  time.Now,
	}
}

func (c *Controller) Source() db.Source { return c.source }

// Open loads knowledge base kbID and starts a session showing it on a
// width x height canvas.
func (c *Controller) Open(ctx context.Context, kbID string, width, height int) (*Session, error) {
	snapshot, err := c.source.Graph(ctx, kbID)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("%v", err)
		return nil, err
	}
	logger := log.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		logger = &log.Logger
	}
	s, err := newSession(kbID, snapshot, width, height, c.conf, *logger, c.timeNow())
	if err != nil {
		log.Ctx(ctx).Error().Msgf("%v", err)
		return nil, err
	}
	go s.run(c.conf.FrameInterval)
	c.sessions.Set(s)
	log.Ctx(ctx).Info().Msgf("Open(%s) -> session %s with %d nodes and %d edges", kbID, s.ID(), len(snapshot.Nodes), len(snapshot.Edges))
	return s, nil
}

func parseID(id string) uuid.UUID {
	u, _ := uuid.Parse(id)
	return u
}

func (c *Controller) Get(id string) (*Session, error) {
	s, ok := c.sessions.Get(&Session{id: parseID(id)})
	if !ok || s.ID() != id {
		return nil, errors.Wrapf(ErrSessionNotFound, "%q", id)
	}
	return s, nil
}

// Len is the number of open sessions.
func (c *Controller) Len() int {
	return c.sessions.Len()
}

// List summarizes all sessions, ordered by id.
func (c *Controller) List(ctx context.Context) ([]SessionInfo, error) {
	infos := []SessionInfo{}
	for _, s := range c.sessions.Items() {
		info, err := s.Info(ctx)
		if errors.Is(err, ErrSessionClosed) {
			continue
		}
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Reload fetches the knowledge base of session id again and hands it to the
// session.
func (c *Controller) Reload(ctx context.Context, id string) error {
	s, err := c.Get(id)
	if err != nil {
		return err
	}
	snapshot, err := c.source.Graph(ctx, s.KnowledgeBase())
	if err != nil {
		log.Ctx(ctx).Error().Msgf("%v", err)
		return err
	}
	log.Ctx(ctx).Debug().Msgf("Reload(%s) -> %d nodes and %d edges", id, len(snapshot.Nodes), len(snapshot.Edges))
	return s.SetGraph(ctx, snapshot)
}

func (c *Controller) Close(id string) error {
	s, err := c.Get(id)
	if err != nil {
		return err
	}
	c.sessions.Delete(s)
	s.close()
	return nil
}

func (c *Controller) CloseAll() {
	for _, s := range c.sessions.Items() {
		c.sessions.Delete(s)
		s.close()
	}
}

// ExpireIdleSessions closes idle sessions every interval until ctx is done.
func (c *Controller) ExpireIdleSessions(ctx context.Context, interval time.Duration) {
	if c.conf.IdleTimeout <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := c.expire(c.timeNow()); n > 0 {
				log.Info().Msgf("closed %d idle sessions", n)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *Controller) expire(now time.Time) int {
	closed := 0
	for _, s := range c.sessions.Items() {
		if now.Sub(s.LastUsed()) < c.conf.IdleTimeout {
			continue
		}
		c.sessions.Delete(s)
		s.close()
		closed++
	}
	return closed
}
