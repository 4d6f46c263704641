package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestAddRequestID(t *testing.T) {
	for _, test := range []struct {
		Name   string
		Header string
	}{
		{Name: "generated"},
		{Name: "from header", Header: "abc"},
	} {
		t.Run(test.Name, func(t *testing.T) {
			assert := assert.New(t)
			called, seen := false, ""
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				seen = CtxGetRequestID(r.Context())
			})
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if test.Header != "" {
				req.Header.Set(HTTPHeaderRequestID, test.Header)
			}
			rec := httptest.NewRecorder()
			AddRequestID(next).ServeHTTP(rec, req)
			assert.True(called, "middleware handler must call next handler")
			if test.Header != "" {
				assert.Equal(test.Header, seen)
			} else {
				_, err := uuid.Parse(seen)
				assert.NoError(err)
			}
			assert.Equal(seen, rec.Header().Get(HTTPHeaderRequestID))
		})
	}
}

func TestCtxGetRequestID(t *testing.T) {
	assert.Equal(t, "", CtxGetRequestID(context.Background()))
	ctx := context.WithValue(context.Background(), contextValueRequestID, 3)
	assert.Equal(t, "", CtxGetRequestID(ctx), "invalid type in correct key")
}

func TestAddAll(t *testing.T) {
	logBuffer := bytes.NewBuffer([]byte{})
	old := log.Logger
	t.Cleanup(func() { log.Logger = old })
	log.Logger = zerolog.New(logBuffer).Level(zerolog.DebugLevel).With().Str("test", "test").Logger()
	next := http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			log.Ctx(r.Context()).Info().Msg("AAA")
			w.WriteHeader(http.StatusTeapot)
		},
	)
	req := httptest.NewRequest(http.MethodPost, "/query", nil)
	req.Header.Set(HTTPHeaderRequestID, "r-1")
	rec := httptest.NewRecorder()
	AddAll(next).ServeHTTP(rec, req)
	assert := assert.New(t)
	assert.Equal(http.StatusTeapot, rec.Code)
	assert.Contains(logBuffer.String(), `"level":"info","test":"test","requestID":"r-1","message":"AAA"`)
	assert.Contains(logBuffer.String(), `"method":"POST","path":"/query","status":418`)
}
