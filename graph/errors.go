package graph

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/suxatcode/knowledge-graph-view/db"
	"github.com/suxatcode/knowledge-graph-view/graph/executor"
	"github.com/suxatcode/knowledge-graph-view/interact"
	"github.com/suxatcode/knowledge-graph-view/internal/controller"
)

var ErrInvalidInput = errors.New("invalid input")

// ErrorCode classifies err for the "code" extension of GraphQL errors.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, executor.ErrInvalidArgument),
		errors.Is(err, interact.ErrUnknownPointerType):
		return executor.CodeBadUserInput
	case errors.Is(err, db.ErrGraphNotFound), errors.Is(err, controller.ErrSessionNotFound),
		errors.Is(err, controller.ErrSessionClosed):
		return executor.CodeNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return executor.CodeUnavailable
	}
	return executor.CodeInternal
}

func logError(ctx context.Context, err error) error {
	if ErrorCode(err) == executor.CodeInternal {
		log.Ctx(ctx).Error().Msgf("%v", err)
	} else {
		log.Ctx(ctx).Debug().Msgf("%v", err)
	}
	return err
}
