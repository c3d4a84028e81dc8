package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sigrelay/sigrelay/server/clock"
	"github.com/sigrelay/sigrelay/server/logger"
)

type MuxParams struct {
	Log        logger.Logger
	Clock      clock.Clock
	BaseURL    string
	StaticDir  string
	ICEServers []ICEServer
	Prometheus PrometheusConfig
	Relay      RelayConfig
	Channels   *ChannelManager
}

type Mux struct {
	BaseURL    string
	handler    *chi.Mux
	iceServers []ICEServer
	channels   *ChannelManager
	clock      clock.Clock
}

func (mux *Mux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux.handler.ServeHTTP(w, r)
}

func NewMux(params MuxParams) *Mux {
	log := params.Log.WithNamespaceAppended("mux")

	renderer := NewJSONRenderer(log)

	cl := params.Clock
	if cl == nil {
		cl = clock.New()
	}

	handler := chi.NewRouter()
	mux := &Mux{
		BaseURL:    params.BaseURL,
		handler:    handler,
		iceServers: params.ICEServers,
		channels:   params.Channels,
		clock:      cl,
	}

	var root string
	if params.BaseURL == "" {
		root = "/"
	} else {
		root = params.BaseURL
	}

	wsHandler := NewWSHandler(WSHandlerParams{
		Log:      log,
		Channels: params.Channels,
		Config:   params.Relay,
	})

	prom := params.Prometheus

	handler.Route(root, func(router chi.Router) {
		router.Get("/ws", wsHandler.ServeHTTP)
		router.Get("/ws/{channel}", wsHandler.ServeHTTP)
		router.Get("/ice-servers", renderer.Render(mux.routeICEServers))
		router.Get("/channels", renderer.Render(mux.routeChannels))
		router.Get("/probes/liveness", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
		})
		router.Get("/probes/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
		})
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			accessToken := r.Header.Get("Authorization")
			if strings.HasPrefix(accessToken, "Bearer ") {
				accessToken = accessToken[len("Bearer "):]
			} else {
				accessToken = r.FormValue("access_token")
			}

			if accessToken == "" || accessToken != prom.AccessToken {
				w.WriteHeader(http.StatusUnauthorized)

				return
			}
			promhttp.Handler().ServeHTTP(w, r)
		})

		if params.StaticDir != "" {
			log.Info("Serving static files", logger.Ctx{
				"static_dir": params.StaticDir,
			})

			router.Handle("/*", static(params.BaseURL, http.Dir(params.StaticDir)))
		}
	})

	return mux
}

func static(prefix string, dir http.FileSystem) http.Handler {
	fileServer := http.FileServer(dir)

	return http.StripPrefix(prefix, fileServer)
}

func (mux *Mux) routeICEServers(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	return GetICEAuthServers(mux.iceServers, mux.clock.Now()), nil
}

func (mux *Mux) routeChannels(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	return mux.channels.Snapshot(), nil
}
