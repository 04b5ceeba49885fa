package core

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/joeydtaylor/steeze-hooks/pkg/hook"
	"github.com/joeydtaylor/steeze-hooks/pkg/loader"
	hmetrics "github.com/joeydtaylor/steeze-hooks/pkg/middleware/metrics"
	"github.com/joeydtaylor/steeze-hooks/pkg/module"
	"github.com/joeydtaylor/steeze-hooks/pkg/report"
)

// Dispatcher runs the handler chain configured for a handler type.
type Dispatcher struct {
	loader   *loader.Loader
	reporter *report.Reporter
	log      *zap.Logger
	observe  func(handlerType, result string, elapsed time.Duration)
}

type DispatcherOption func(*Dispatcher)

func WithDispatchLogger(l *zap.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.log = l }
}

// WithDispatchObserver replaces the prometheus dispatch metrics.
func WithDispatchObserver(fn func(handlerType, result string, elapsed time.Duration)) DispatcherOption {
	return func(d *Dispatcher) { d.observe = fn }
}

func NewDispatcher(l *loader.Loader, r *report.Reporter, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		loader:   l,
		reporter: r,
		log:      zap.NewNop(),
		observe:  hmetrics.ObserveDispatch,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Dispatch runs every handler configured for handlerType in order and stops
// at the first result other than hook.OK. A failure or abort also stops the
// chain, even when it converges on hook.OK (a debug page was delivered, or
// the abort carried OK). Failures never escape: they are turned into a
// result by the Reporter.
func (d *Dispatcher) Dispatch(req hook.Request, handlerType string) (res hook.Result) {
	start := time.Now()
	defer func() { d.observe(handlerType, res.String(), time.Since(start)) }()

	opts := hook.ParseOptions(req.Options())

	raw, ok := req.Config()[handlerType]
	if !ok {
		return d.converge(req, handlerType, "", fmt.Errorf("no handler configured for %s", handlerType), opts)
	}
	chain, err := ParseChain(raw)
	if err != nil {
		return d.converge(req, handlerType, raw, err, opts)
	}
	if len(chain) == 0 {
		return hook.InternalServerError
	}

	for _, spec := range chain {
		var stopped bool
		res, stopped = d.run(req, handlerType, spec, opts)
		if stopped || res != hook.OK {
			d.log.Debug("handler chain stopped",
				zap.String("handlerType", handlerType),
				zap.String("handler", spec.String()),
				zap.Stringer("result", res),
			)
			return res
		}
	}
	return hook.OK
}

// run invokes one handler. stopped is true when the handler failed,
// panicked or aborted; the chain ends there whatever res is.
func (d *Dispatcher) run(req hook.Request, handlerType string, spec HandlerSpec, opts hook.Options) (res hook.Result, stopped bool) {
	defer func() {
		if v := recover(); v != nil {
			rec := report.FromPanic(v, debug.Stack())
			rec.HandlerType, rec.HandlerName = handlerType, spec.String()
			res, stopped = d.reporter.Report(req, rec, opts.Debug), true
		}
	}()

	m, err := d.loader.Load(spec.Module, opts)
	if err != nil {
		return d.converge(req, handlerType, spec.String(), err, opts), true
	}
	target, err := module.Resolve(m, spec.Path)
	if err != nil {
		return d.converge(req, handlerType, spec.String(), err, opts), true
	}
	res, err = target.Call(req)
	if err != nil {
		return d.converge(req, handlerType, spec.String(), err, opts), true
	}
	return res, false
}

// converge turns a handler failure into a result. An abort is a deliberate
// stop and is never reported.
func (d *Dispatcher) converge(req hook.Request, handlerType, handlerName string, err error, opts hook.Options) hook.Result {
	var abort *hook.Abort
	if errors.As(err, &abort) {
		if abort.Status != 0 {
			req.SetStatus(abort.Status)
		}
		return abort.Code
	}
	rec := report.FromError(err)
	rec.HandlerType, rec.HandlerName = handlerType, handlerName
	return d.reporter.Report(req, rec, opts.Debug)
}
