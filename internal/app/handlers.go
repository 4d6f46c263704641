package app

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/suxatcode/knowledge-graph-view/graph"
	"github.com/suxatcode/knowledge-graph-view/graph/executor"
	"github.com/suxatcode/knowledge-graph-view/internal/controller"
	"github.com/suxatcode/knowledge-graph-view/middleware"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type api struct {
	ctrl    *controller.Controller
	metrics *metrics
}

// NewHandler serves the GraphQL API at /query, frames as PNG and the
// metrics of reg. The playground is mounted at / if enabled.
func NewHandler(ctrl *controller.Controller, reg *prometheus.Registry, withPlayground bool) http.Handler {
	a := &api{ctrl: ctrl, metrics: newMetrics(reg, ctrl)}
	graphQLHandler := handler.NewDefaultServer(executor.NewExecutableSchema(executor.Config{
		Resolvers: &graph.Resolver{
			Ctrl:          ctrl,
			PointerEvents: a.metrics.pointer,
		},
		ErrorCode: graph.ErrorCode,
	}))

	mux := http.NewServeMux()
	if withPlayground {
		mux.Handle("GET /{$}", playground.Handler("GraphQL playground", "/query"))
	}
	mux.Handle("/query", a.metrics.instrument("/query", graphQLHandler.ServeHTTP))
	mux.Handle("GET /sessions/{id}/frame.png", a.metrics.instrument("/sessions/{id}/frame.png", a.frame))
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return middleware.AddAll(mux)
}

func statusOf(err error) int {
	switch graph.ErrorCode(err) {
	case executor.CodeBadUserInput:
		return http.StatusBadRequest
	case executor.CodeNotFound:
		return http.StatusNotFound
	case executor.CodeUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		log.Ctx(r.Context()).Error().Msgf("%v", err)
	} else {
		log.Ctx(r.Context()).Debug().Msgf("%d: %v", status, err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()}); err != nil {
		log.Ctx(r.Context()).Error().Msgf("encode response: %v", err)
	}
}

// frame serves the current picture of a session. Pictures are binary, so
// they are served next to the GraphQL API rather than through it.
func (a *api) frame(w http.ResponseWriter, r *http.Request) {
	s, err := a.ctrl.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, err := s.Frame(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.metrics.frames.Inc()
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data)
}
