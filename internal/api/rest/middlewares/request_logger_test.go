package middlewares

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestLogger_Handle(t *testing.T) {
	cases := map[string]struct {
		handler        http.HandlerFunc
		expectedStatus int
		expectedLog    map[string]string
	}{
		"logs status": {
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusCreated)
			},
			expectedStatus: http.StatusCreated,
			expectedLog: map[string]string{
				"msg":    "http_request",
				"method": "POST",
				"path":   "/api/v1/products",
			},
		},
		"implicit ok": {
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("ok"))
			},
			expectedStatus: http.StatusOK,
		},
		"recovers panic": {
			handler: func(http.ResponseWriter, *http.Request) {
				panic("boom")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedLog: map[string]string{
				"level": "ERROR",
				"msg":   "handler panicked",
				"panic": "boom",
			},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			w := httptest.NewRecorder()
			NewRequestLogger(logger).Handle(tc.handler).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/products", http.NoBody))

			assert.Equal(t, tc.expectedStatus, w.Code)
			assert.Contains(t, buf.String(), fmt.Sprintf(`"status":%d`, tc.expectedStatus))
			for k, v := range tc.expectedLog {
				assert.Contains(t, buf.String(), fmt.Sprintf("%q:%q", k, v))
			}
		})
	}
}

func TestChain(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return MiddlewareFunc(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		})
	}

	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), tag("outer"), tag("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}
