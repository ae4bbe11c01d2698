// Package telemetry reports server errors to Sentry. With an empty DSN every
// call is a no-op.
package telemetry

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

// InitSentry initialises the SDK. It returns false when dsn is empty.
func InitSentry(dsn, environment, release string) (bool, error) {
	if dsn == "" {
		return false, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          release,
		AttachStacktrace: true,
		Tags:             map[string]string{"service": "streaming-catalog"},
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			return scrub(event)
		},
	})
	if err != nil {
		return false, fmt.Errorf("sentry init: %w", err)
	}
	return true, nil
}

// CaptureError sends err with request context and tags.
func CaptureError(r *http.Request, err error, tags map[string]string) {
	if err == nil {
		return
	}
	hub := sentry.CurrentHub().Clone()
	if r != nil {
		hub.Scope().SetRequest(r)
	}
	for k, v := range tags {
		hub.Scope().SetTag(k, v)
	}
	hub.CaptureException(err)
}

// Recoverer turns a handler panic into a logged, reported 500 with a JSON
// error body. http.ErrAbortHandler is re-raised so the connection is dropped.
func Recoverer(log *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler { //nolint:errorlint
					panic(rec)
				}

				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("panic: %v", rec)
				}
				log.WithError(err).WithField("stack", string(debug.Stack())).Error("request panic")
				CaptureError(r, err, map[string]string{"panic": "true"})

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"internal server error"}`))
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func Flush() {
	sentry.Flush(2 * time.Second)
}

// scrub removes credentials and addresses before an event leaves the process.
func scrub(event *sentry.Event) *sentry.Event {
	if event == nil {
		return nil
	}
	event.User.IPAddress = ""
	if event.Request != nil {
		for k := range event.Request.Headers {
			switch k {
			case "Authorization", "Cookie":
				event.Request.Headers[k] = "[redacted]"
			}
		}
		event.Request.QueryString = ""
	}
	return event
}
