package server

import (
	"encoding/json"
	"net/http"

	"github.com/juju/errors"
	"github.com/oxtoacart/bpool"
	"github.com/sigrelay/sigrelay/server/logger"
)

const defaultBufferPoolSize = 128

// JSONRenderer encodes handler results into pooled buffers so that a failed
// encoding never leaves a partially written response.
type JSONRenderer struct {
	log     logger.Logger
	bufPool *bpool.BufferPool
}

func NewJSONRenderer(log logger.Logger) *JSONRenderer {
	return &JSONRenderer{
		log:     log.WithNamespaceAppended("renderer"),
		bufPool: bpool.NewBufferPool(defaultBufferPoolSize),
	}
}

type JSONHandler func(w http.ResponseWriter, r *http.Request) (data interface{}, err error)

func (jr *JSONRenderer) Render(h JSONHandler) http.HandlerFunc {
	fn := func(w http.ResponseWriter, r *http.Request) {
		data, err := h(w, r)
		if err != nil {
			jr.log.Error("Handle request", errors.Trace(err), logger.Ctx{
				"path": r.URL.Path,
			})
			w.WriteHeader(http.StatusInternalServerError)

			return
		}

		buf := jr.bufPool.Get()
		defer jr.bufPool.Put(buf)

		if err := json.NewEncoder(buf).Encode(data); err != nil {
			jr.log.Error("Encode JSON", errors.Trace(err), logger.Ctx{
				"path": r.URL.Path,
			})
			w.WriteHeader(http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)

		if _, err := buf.WriteTo(w); err != nil {
			jr.log.Error("Write response", errors.Trace(err), nil)
		}
	}

	return http.HandlerFunc(fn)
}
