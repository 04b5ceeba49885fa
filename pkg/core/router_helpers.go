package core

import (
	"net/http"

	"github.com/joeydtaylor/steeze-hooks/pkg/codec"
	"github.com/joeydtaylor/steeze-hooks/pkg/loader"
)

func writeJSON(w http.ResponseWriter, payload []byte, status int) {
	w.Header().Set("Content-Type", codec.JSONStrict.ContentType())
	w.WriteHeader(status)
	if len(payload) > 0 {
		_, _ = w.Write(payload)
		return
	}
	_, _ = w.Write([]byte(`{}`))
}

// modulesHandler lists the loader cache.
func modulesHandler(l *loader.Loader) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		out, err := codec.JSONStrict.Marshal(l.Modules())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, out, http.StatusOK)
	}
}
