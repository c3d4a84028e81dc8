package server

import (
	"net/http"
	"net/http/pprof"
)

// NewPProf returns a Server exposing the runtime profiles under
// /debug/pprof/. It should only be bound to a private address.
func NewPProf() *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	return New(Params{}, mux)
}
