package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type logCall struct {
	level string
	msg   string
	args  []any
}

type testLogger struct {
	calls []logCall
}

func (l *testLogger) Info(msg string, args ...any) {
	l.calls = append(l.calls, logCall{"info", msg, args})
}

func (l *testLogger) Error(msg string, args ...any) {
	l.calls = append(l.calls, logCall{"error", msg, args})
}

func TestLoggerMiddleware(t *testing.T) {
	serve := func(t *testing.T, status int) *testLogger {
		l := &testLogger{}

		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, err := w.Write([]byte("hi"))
			require.NoError(t, err, "should write response")
		})

		srv := httptest.NewServer(LoggerMiddleware(l)(h))
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/test")
		require.NoError(t, err, "should make request to test server")
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err, "should read response body")
		defer resp.Body.Close() // nolint:errcheck

		require.Equalf(t, status, resp.StatusCode, "unexpected status. Resp: %s", string(body))
		require.Equal(t, "hi", string(body), "should return 'hi' in response")
		return l
	}

	t.Run("log request", func(t *testing.T) {
		l := serve(t, http.StatusTeapot)

		require.Len(t, l.calls, 1, "logger should be called once")
		call := l.calls[0]
		require.Equal(t, "info", call.level)
		require.Equal(t, "got HTTP request", call.msg, "logger should log 'got HTTP request'")

		args := call.args
		require.Len(t, args, 10, "logger should log 10 fields")
		require.Equal(t, "method", args[0])
		require.Equal(t, "GET", args[1])
		require.Equal(t, "uri", args[2])
		require.Equal(t, "/test", args[3])
		require.Equal(t, "duration", args[4])
		require.NotEmpty(t, args[5], "duration should not be empty")
		require.Equal(t, "status", args[6])
		require.Equal(t, http.StatusTeapot, args[7])
		require.Equal(t, "size", args[8])
		require.Equal(t, 2, args[9], "size should be 2 (length of 'hi')")
	})

	t.Run("server error logged as error", func(t *testing.T) {
		l := serve(t, http.StatusInternalServerError)

		require.Len(t, l.calls, 1)
		require.Equal(t, "error", l.calls[0].level)
	})
}
