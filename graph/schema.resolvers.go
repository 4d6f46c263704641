package graph

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/suxatcode/knowledge-graph-view/graph/executor"
	"github.com/suxatcode/knowledge-graph-view/graph/model"
	"github.com/suxatcode/knowledge-graph-view/interact"
	"github.com/suxatcode/knowledge-graph-view/internal/controller"
	"github.com/suxatcode/knowledge-graph-view/layout"
	"github.com/suxatcode/knowledge-graph-view/viewer"
)

// OpenSession is the resolver for the openSession field.
func (r *mutationResolver) OpenSession(ctx context.Context, knowledgeBase string, width *int, height *int) (*controller.SessionInfo, error) {
	if knowledgeBase == "" {
		return nil, logError(ctx, errors.Wrap(ErrInvalidInput, "knowledgeBase is required"))
	}
	vp := layout.DefaultForceSimulationConfig.Viewport
	w, h := int(vp.Width), int(vp.Height)
	if width != nil && height != nil && *width > 0 && *height > 0 {
		w, h = *width, *height
	}
	s, err := r.Ctrl.Open(ctx, knowledgeBase, w, h)
	if err != nil {
		return nil, logError(ctx, err)
	}
	return r.info(ctx, s)
}

// Pointer is the resolver for the pointer field.
func (r *mutationResolver) Pointer(ctx context.Context, id string, event model.PointerInput) (model.Cursor, error) {
	s, err := r.Ctrl.Get(id)
	if err != nil {
		return model.CursorDefault, logError(ctx, err)
	}
	if !event.Type.IsValid() {
		return model.CursorDefault, logError(ctx, errors.Wrapf(interact.ErrUnknownPointerType, "%q", event.Type))
	}
	ev := interact.PointerEvent{
		Type:    interact.PointerType(strings.ToLower(event.Type.String())),
		ClientX: event.ClientX,
		ClientY: event.ClientY,
	}
	cursor, err := s.Pointer(ctx, ev)
	if err != nil {
		return model.CursorDefault, logError(ctx, err)
	}
	if r.PointerEvents != nil {
		r.PointerEvents.WithLabelValues(string(ev.Type)).Inc()
	}
	return model.Cursor(strings.ToUpper(string(cursor))), nil
}

// Resize is the resolver for the resize field.
func (r *mutationResolver) Resize(ctx context.Context, id string, width int, height int, rect *model.DisplayRectInput) (*controller.SessionInfo, error) {
	s, err := r.Ctrl.Get(id)
	if err != nil {
		return nil, logError(ctx, err)
	}
	var displayRect *interact.DisplayRect
	if rect != nil {
		displayRect = &interact.DisplayRect{Left: rect.Left, Top: rect.Top, Width: rect.Width, Height: rect.Height}
	}
	if err := s.Resize(ctx, width, height, displayRect); err != nil {
		return nil, logError(ctx, err)
	}
	return r.info(ctx, s)
}

// ResetSelection is the resolver for the resetSelection field.
func (r *mutationResolver) ResetSelection(ctx context.Context, id string) (*viewer.Detail, error) {
	s, err := r.Ctrl.Get(id)
	if err != nil {
		return nil, logError(ctx, err)
	}
	if err := s.ResetSelection(ctx); err != nil {
		return nil, logError(ctx, err)
	}
	return r.detail(ctx, s)
}

// Reload is the resolver for the reload field.
func (r *mutationResolver) Reload(ctx context.Context, id string) (*controller.SessionInfo, error) {
	if err := r.Ctrl.Reload(ctx, id); err != nil {
		return nil, logError(ctx, err)
	}
	s, err := r.Ctrl.Get(id)
	if err != nil {
		return nil, logError(ctx, err)
	}
	return r.info(ctx, s)
}

// CloseSession is the resolver for the closeSession field.
func (r *mutationResolver) CloseSession(ctx context.Context, id string) (bool, error) {
	if err := r.Ctrl.Close(id); err != nil {
		return false, logError(ctx, err)
	}
	log.Ctx(ctx).Debug().Msgf("closed session %s", id)
	return true, nil
}

// KnowledgeBases is the resolver for the knowledgeBases field.
func (r *queryResolver) KnowledgeBases(ctx context.Context) ([]string, error) {
	ids, err := r.Ctrl.Source().KnowledgeBases(ctx)
	if err != nil {
		return nil, logError(ctx, err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// Sessions is the resolver for the sessions field.
func (r *queryResolver) Sessions(ctx context.Context) ([]controller.SessionInfo, error) {
	infos, err := r.Ctrl.List(ctx)
	if err != nil {
		return nil, logError(ctx, err)
	}
	return infos, nil
}

// Session is the resolver for the session field.
func (r *queryResolver) Session(ctx context.Context, id string) (*controller.SessionInfo, error) {
	s, err := r.Ctrl.Get(id)
	if err != nil {
		return nil, logError(ctx, err)
	}
	return r.info(ctx, s)
}

// Selection is the resolver for the selection field.
func (r *queryResolver) Selection(ctx context.Context, id string) (*viewer.Detail, error) {
	s, err := r.Ctrl.Get(id)
	if err != nil {
		return nil, logError(ctx, err)
	}
	return r.detail(ctx, s)
}

// Layout is the resolver for the layout field.
func (r *queryResolver) Layout(ctx context.Context, id string) ([]layout.Placement, error) {
	s, err := r.Ctrl.Get(id)
	if err != nil {
		return nil, logError(ctx, err)
	}
	placements, err := s.Placements(ctx)
	if err != nil {
		return nil, logError(ctx, err)
	}
	if placements == nil {
		placements = []layout.Placement{}
	}
	return placements, nil
}

// Mutation returns executor.MutationResolver implementation.
func (r *Resolver) Mutation() executor.MutationResolver { return &mutationResolver{r} }

// Query returns executor.QueryResolver implementation.
func (r *Resolver) Query() executor.QueryResolver { return &queryResolver{r} }

type mutationResolver struct{ *Resolver }
type queryResolver struct{ *Resolver }

func (r *Resolver) info(ctx context.Context, s *controller.Session) (*controller.SessionInfo, error) {
	info, err := s.Info(ctx)
	if err != nil {
		return nil, logError(ctx, err)
	}
	return &info, nil
}

func (r *Resolver) detail(ctx context.Context, s *controller.Session) (*viewer.Detail, error) {
	d, err := s.Selection(ctx)
	if err != nil {
		return nil, logError(ctx, err)
	}
	if d.Fields == nil {
		d.Fields = []viewer.Field{}
	}
	return &d, nil
}
