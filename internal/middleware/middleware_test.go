package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vancomm/pumpkin-sweeper/internal/config"
)

func TestWrapOrder(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Wrap(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}),
		tag("inner"), nil, tag("outer"),
	)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestSession(t *testing.T) {
	tokens := config.NewTokensWithSecret([]byte("secret"), time.Hour)
	token, err := tokens.Sign("abc")
	require.NoError(t, err)

	var (
		claims *config.SessionClaims
		ok     bool
	)
	h := Session(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok = SessionClaims(r.Context())
	}))

	tests := []struct {
		name   string
		header string
		query  string
		want   bool
	}{
		{"bearer", "Bearer " + token, "", true},
		{"query", "", "?token=" + token, true},
		{"none", "", "", false},
		{"garbage", "Bearer nope", "", false},
		{"wrong scheme", "Basic " + token, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, ok = nil, false
			r := httptest.NewRequest(http.MethodGet, "/game/abc"+tt.query, nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			h.ServeHTTP(httptest.NewRecorder(), r)
			require.Equal(t, tt.want, ok)
			if tt.want {
				assert.Equal(t, "abc", claims.GameID)
			}
		})
	}
}

func TestAccessLog(t *testing.T) {
	log, hook := test.NewNullLogger()
	h := AccessLog(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/game?token=secret", nil))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, http.StatusTeapot, entry.Data["status"])
	assert.Equal(t, "/game", entry.Data["path"])
}

func TestLoggingDefaultsStatus(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rec := httptest.NewRecorder()
	Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
