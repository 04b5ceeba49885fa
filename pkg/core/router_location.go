package core

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/joeydtaylor/steeze-hooks/pkg/hook"
	manifest "github.com/joeydtaylor/steeze-hooks/pkg/manifest"
)

// locationHandler runs the location's phases in order. OK and Declined move
// on to the next phase; a declined content phase is a 404. Any other result
// ends the request and, if nothing was sent yet, becomes the HTTP status.
func locationHandler(loc manifest.Location, serverOpts manifest.Options, d BuildDeps) http.HandlerFunc {
	opts := loc.Options.Merge(serverOpts)
	phases := loc.Chains()
	prefix := strings.TrimSuffix(loc.Path, "/")
	hasContent := false
	for _, p := range phases {
		if p == manifest.PhaseContent {
			hasContent = true
		}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		req := newHTTPRequest(w, r, loc.Handlers, opts, strings.TrimPrefix(r.URL.Path, prefix))

		for _, phase := range phases {
			res := d.Dispatcher.Dispatch(req, string(phase))
			switch res {
			case hook.OK:
				// A failure shown as a debug page is OK too, so with debug
				// on a failing access or auth phase does not guard the
				// phases after it.
			case hook.Declined:
				if phase == manifest.PhaseContent {
					req.fail(hook.Result(http.StatusNotFound))
					return
				}
			default:
				if d.Log != nil {
					d.Log.Debug("request ended by handler",
						zap.String("location", loc.Path),
						zap.String("phase", string(phase)),
						zap.Stringer("result", res),
					)
				}
				req.fail(res)
				return
			}
		}

		if !hasContent {
			req.fail(hook.Result(http.StatusNotFound))
			return
		}
		_ = req.SendHeader()
	}
}

// withDeadline bounds the request context of a location by its policy
// timeout. Handlers see it on Incoming().Context().
func withDeadline(next http.HandlerFunc, p manifest.Policy) http.HandlerFunc {
	if p.TimeoutMS <= 0 {
		return next
	}
	d := time.Duration(p.TimeoutMS) * time.Millisecond
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), d)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}
