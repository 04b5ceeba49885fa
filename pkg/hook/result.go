package hook

import (
	"net/http"
	"strconv"
)

// Result is the disposition of a handler or of a whole chain. Besides the
// sentinels below any HTTP status code is a valid Result.
type Result int

const (
	OK                  Result = 0
	Declined            Result = -1
	InternalServerError Result = http.StatusInternalServerError
	// Aborted is the default abort code.
	Aborted = InternalServerError
)

func (r Result) String() string {
	switch r {
	case OK:
		return "ok"
	case Declined:
		return "declined"
	}
	return strconv.Itoa(int(r))
}

// IsHTTPStatus reports whether r can be written as a response status.
func (r Result) IsHTTPStatus() bool {
	return r >= 100 && r <= 599
}
