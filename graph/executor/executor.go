// Package executor runs GraphQL operations of the viewer API against its
// resolvers. It implements graphql.ExecutableSchema, so the gqlgen
// handler takes care of transport, parsing, validation and variable
// coercion.
package executor

import (
	"context"
	_ "embed"
	"encoding/json"

	"github.com/99designs/gqlgen/graphql"
	"github.com/pkg/errors"
	"github.com/suxatcode/knowledge-graph-view/graph/model"
	"github.com/suxatcode/knowledge-graph-view/internal/controller"
	"github.com/suxatcode/knowledge-graph-view/layout"
	"github.com/suxatcode/knowledge-graph-view/viewer"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

//go:embed schema.graphqls
var sourceData string

var parsedSchema = gqlparser.MustLoadSchema(&ast.Source{Name: "schema.graphqls", Input: sourceData, BuiltIn: false})

// Error codes set as the "code" extension of every error.
const (
	CodeBadUserInput = "BAD_USER_INPUT"
	CodeNotFound     = "NOT_FOUND"
	CodeUnavailable  = "UNAVAILABLE"
	CodeInternal     = "INTERNAL"
)

// ErrInvalidArgument marks arguments that could not be decoded.
var ErrInvalidArgument = errors.New("invalid argument")

type Config struct {
	Resolvers ResolverRoot
	// ErrorCode classifies resolver errors. Without it every error that is
	// not an ErrInvalidArgument is INTERNAL.
	ErrorCode func(error) string
}

type ResolverRoot interface {
	Mutation() MutationResolver
	Query() QueryResolver
}

type MutationResolver interface {
	OpenSession(ctx context.Context, knowledgeBase string, width *int, height *int) (*controller.SessionInfo, error)
	Pointer(ctx context.Context, id string, event model.PointerInput) (model.Cursor, error)
	Resize(ctx context.Context, id string, width int, height int, rect *model.DisplayRectInput) (*controller.SessionInfo, error)
	ResetSelection(ctx context.Context, id string) (*viewer.Detail, error)
	Reload(ctx context.Context, id string) (*controller.SessionInfo, error)
	CloseSession(ctx context.Context, id string) (bool, error)
}

type QueryResolver interface {
	KnowledgeBases(ctx context.Context) ([]string, error)
	Sessions(ctx context.Context) ([]controller.SessionInfo, error)
	Session(ctx context.Context, id string) (*controller.SessionInfo, error)
	Selection(ctx context.Context, id string) (*viewer.Detail, error)
	Layout(ctx context.Context, id string) ([]layout.Placement, error)
}

func NewExecutableSchema(cfg Config) graphql.ExecutableSchema {
	return &executableSchema{resolvers: cfg.Resolvers, errorCode: cfg.ErrorCode}
}

type executableSchema struct {
	resolvers ResolverRoot
	errorCode func(error) string
}

func (e *executableSchema) Schema() *ast.Schema {
	return parsedSchema
}

// Complexity leaves every field at the default estimate.
func (e *executableSchema) Complexity(typeName, field string, childComplexity int, rawArgs map[string]interface{}) (int, bool) {
	return 0, false
}

func (e *executableSchema) Exec(ctx context.Context) graphql.ResponseHandler {
	rc := graphql.GetOperationContext(ctx)
	ec := &executionContext{OperationContext: rc, executableSchema: e}

	var root *ast.Definition
	var rootValue any
	switch rc.Operation.Operation {
	case ast.Query:
		root, rootValue = parsedSchema.Query, queryRoot{}
	case ast.Mutation:
		root, rootValue = parsedSchema.Mutation, mutationRoot{}
	default:
		return graphql.OneShot(&graphql.Response{Errors: gqlerror.List{
			gqlerror.Errorf("unsupported GraphQL operation: %s", rc.Operation.Operation),
		}})
	}

	first := true
	return func(ctx context.Context) *graphql.Response {
		if !first {
			return nil
		}
		first = false
		data, ok := ec.executeObject(ctx, root, rc.Operation.SelectionSet, rootValue, nil)
		if !ok {
			data = null
		}
		return &graphql.Response{Data: data, Errors: ec.errors}
	}
}

var null = json.RawMessage("null")

// executionContext holds the state of one operation. Fields are resolved
// one after another, which also gives mutations their serial order.
type executionContext struct {
	*graphql.OperationContext
	*executableSchema
	errors gqlerror.List
}

type queryRoot struct{}
type mutationRoot struct{}

func (ec *executionContext) resolveQuery(ctx context.Context, field *ast.Field, args map[string]any) (any, error) {
	r := ec.resolvers.Query()
	switch field.Name {
	case "__schema":
		return ec.introspectSchema()
	case "__type":
		name, err := arg[string](args, "name")
		if err != nil {
			return nil, err
		}
		return ec.introspectType(name)
	case "knowledgeBases":
		return r.KnowledgeBases(ctx)
	case "sessions":
		return r.Sessions(ctx)
	case "session":
		id, err := arg[string](args, "id")
		if err != nil {
			return nil, err
		}
		return r.Session(ctx, id)
	case "selection":
		id, err := arg[string](args, "id")
		if err != nil {
			return nil, err
		}
		return r.Selection(ctx, id)
	case "layout":
		id, err := arg[string](args, "id")
		if err != nil {
			return nil, err
		}
		return r.Layout(ctx, id)
	}
	return nil, errors.Errorf("unknown field Query.%s", field.Name)
}

func (ec *executionContext) resolveMutation(ctx context.Context, field *ast.Field, args map[string]any) (any, error) {
	r := ec.resolvers.Mutation()
	id, err := arg[string](args, "id")
	if err != nil {
		return nil, err
	}
	switch field.Name {
	case "openSession":
		kb, err := arg[string](args, "knowledgeBase")
		if err != nil {
			return nil, err
		}
		width, err := arg[*int](args, "width")
		if err != nil {
			return nil, err
		}
		height, err := arg[*int](args, "height")
		if err != nil {
			return nil, err
		}
		return r.OpenSession(ctx, kb, width, height)
	case "pointer":
		event, err := arg[model.PointerInput](args, "event")
		if err != nil {
			return nil, err
		}
		return r.Pointer(ctx, id, event)
	case "resize":
		width, err := arg[int](args, "width")
		if err != nil {
			return nil, err
		}
		height, err := arg[int](args, "height")
		if err != nil {
			return nil, err
		}
		rect, err := arg[*model.DisplayRectInput](args, "rect")
		if err != nil {
			return nil, err
		}
		return r.Resize(ctx, id, width, height, rect)
	case "resetSelection":
		return r.ResetSelection(ctx, id)
	case "reload":
		return r.Reload(ctx, id)
	case "closeSession":
		return r.CloseSession(ctx, id)
	}
	return nil, errors.Errorf("unknown field Mutation.%s", field.Name)
}

// arg decodes argument name into T. A missing or null argument yields the
// zero value; the validator already rejected those for non-null arguments.
func arg[T any](args map[string]any, name string) (T, error) {
	var out T
	v, ok := args[name]
	if !ok || v == nil {
		return out, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return out, errors.Wrapf(ErrInvalidArgument, "%s: %v", name, err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, errors.Wrapf(ErrInvalidArgument, "%s: %v", name, err)
	}
	return out, nil
}

func (ec *executionContext) code(err error) string {
	if errors.Is(err, ErrInvalidArgument) {
		return CodeBadUserInput
	}
	if ec.errorCode == nil {
		return CodeInternal
	}
	return ec.errorCode(err)
}

func (ec *executionContext) addError(path ast.Path, err error) {
	var gqlErr *gqlerror.Error
	if errors.As(err, &gqlErr) {
		if gqlErr.Path == nil {
			gqlErr.Path = path
		}
	} else {
		gqlErr = gqlerror.WrapPath(path, err)
	}
	if gqlErr.Extensions == nil {
		gqlErr.Extensions = map[string]interface{}{}
	}
	if _, ok := gqlErr.Extensions["code"]; !ok {
		gqlErr.Extensions["code"] = ec.code(err)
	}
	ec.errors = append(ec.errors, gqlErr)
}
