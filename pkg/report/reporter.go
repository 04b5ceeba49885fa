package report

import (
	"fmt"
	"html/template"

	"github.com/joeydtaylor/steeze-hooks/pkg/hook"
	"github.com/valyala/bytebufferpool"
	"go.uber.org/zap"
)

var page = template.Must(template.New("error").Parse(`<html><h3>steeze-hooks: handler error:</h3>
<pre>
<b>Handler: {{.HandlerType}} {{.HandlerName}}</b>
<blockquote>
{{range .Lines}}{{.}}
{{end}}</blockquote>
<b>End of output for {{.HandlerType}} {{.HandlerName}}</b>.
<em>NOTE: Processing of this request stops here. Handlers that follow in the chain, if any, will NOT run.
Unset the debug option to log failures instead of showing them.</em>
</pre></html>
`))

// Reporter delivers FailureRecords.
type Reporter struct {
	log *zap.Logger
}

// New returns a Reporter logging to log.
func New(log *zap.Logger) *Reporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reporter{log: log}
}

// Report shows rec as an HTML page when debug is on and returns hook.OK, so
// the page counts as the delivered response. Otherwise every line of rec is
// logged at error level and hook.InternalServerError is returned.
//
// Failures to write to the client are always logged: the connection the
// page would go to is already broken.
func (r *Reporter) Report(req hook.Request, rec FailureRecord, debug bool) hook.Result {
	if rec.WriteFailure() {
		debug = false
	}
	if debug {
		err := r.writePage(req, rec)
		if err == nil {
			return hook.OK
		}
		r.log.Warn("diagnostic page not delivered",
			zap.String("handlerType", rec.HandlerType),
			zap.String("handlerName", rec.HandlerName),
			zap.Error(err),
		)
	}
	r.logLines(rec)
	return hook.InternalServerError
}

func (r *Reporter) writePage(req hook.Request, rec FailureRecord) error {
	bb := bytebufferpool.Get()
	defer bytebufferpool.Put(bb)

	data := struct {
		HandlerType string
		HandlerName string
		Lines       []string
	}{rec.HandlerType, rec.HandlerName, rec.Lines()}
	if err := page.Execute(bb, data); err != nil {
		return err
	}

	req.SetContentType("text/html")
	if err := req.SendHeader(); err != nil {
		return err
	}
	_, err := req.Write(bb.B)
	return err
}

func (r *Reporter) logLines(rec FailureRecord) {
	l := r.log.With(
		zap.String("handlerType", rec.HandlerType),
		zap.String("handlerName", rec.HandlerName),
		zap.Bool("noErrno", true),
	)
	for _, line := range rec.Lines() {
		l.Error(fmt.Sprintf("%s %s: %s", rec.HandlerType, rec.HandlerName, line))
	}
}
