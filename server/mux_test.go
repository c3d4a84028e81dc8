package server_test

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/sigrelay/sigrelay/server"
	"github.com/sigrelay/sigrelay/server/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const prometheusAccessToken = "prom1234"

func newTestMux(baseURL string, staticDir string) *server.Mux {
	turn := server.ICEServer{
		URLs:     []string{"turn:turn.example.com:3478"},
		AuthType: server.AuthTypeSecret,
	}
	turn.AuthSecret.Username = "user"
	turn.AuthSecret.Secret = "secret"

	return server.NewMux(server.MuxParams{
		Log:       test.NewLogger(),
		BaseURL:   baseURL,
		StaticDir: staticDir,
		ICEServers: []server.ICEServer{
			{URLs: []string{"stun:stun.l.google.com:19302"}},
			turn,
		},
		Prometheus: server.PrometheusConfig{AccessToken: prometheusAccessToken},
		Channels:   newTestChannelManager(server.RelayConfig{}),
	})
}

func Test_probes(t *testing.T) {
	mux := newTestMux("/test", "")

	for _, url := range []string{"/test/probes/liveness", "/test/probes/health"} {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", url, nil)
		mux.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code, url)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"), url)
	}
}

func Test_routeICEServers(t *testing.T) {
	mux := newTestMux("", "")

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/ice-servers", nil)
	mux.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var servers []server.ICEAuthServer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &servers))
	require.Equal(t, 2, len(servers))

	assert.Equal(t, server.ICEAuthServer{
		URLs: []string{"stun:stun.l.google.com:19302"},
	}, servers[0])
	assert.Equal(t, []string{"turn:turn.example.com:3478"}, servers[1].URLs)
	assert.Regexp(t, "^[0-9]+:user$", servers[1].Username)
	assert.NotEmpty(t, servers[1].Credential)
}

func Test_routeChannels_empty(t *testing.T) {
	mux := newTestMux("/test", "")

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/test/channels", nil)
	mux.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "{}\n", w.Body.String())
}

func Test_routeWS_plainHTTP(t *testing.T) {
	mux := newTestMux("/test", "")

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/test/ws", nil)
	mux.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUpgradeRequired, w.Code, "not a websocket upgrade")
}

func Test_routeWS_forbiddenOrigin(t *testing.T) {
	config := server.RelayConfig{
		AllowedOrigins: []string{"pages.example.com"},
	}

	mux := server.NewMux(server.MuxParams{
		Log:      test.NewLogger(),
		Relay:    config,
		Channels: newTestChannelManager(config),
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Connection", "Upgrade")
	r.Header.Set("Upgrade", "websocket")
	r.Header.Set("Sec-WebSocket-Version", "13")
	r.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	r.Header.Set("Origin", "http://evil.example.com")
	mux.ServeHTTP(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func Test_static(t *testing.T) {
	dir := t.TempDir()
	err := ioutil.WriteFile(filepath.Join(dir, "pageA.html"), []byte("<h1>page A</h1>"), 0o644)
	require.NoError(t, err)

	mux := newTestMux("/test", dir)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/test/pageA.html", nil)
	mux.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<h1>page A</h1>", w.Body.String())

	w = httptest.NewRecorder()
	r = httptest.NewRequest("GET", "/test/missing.html", nil)
	mux.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r = httptest.NewRequest("GET", "/test/probes/liveness", nil)
	mux.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code, "routes take precedence over static files")
}

func Test_static_disabled(t *testing.T) {
	mux := newTestMux("", "")

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/index.html", nil)
	mux.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func Test_Metrics(t *testing.T) {
	mux := newTestMux("/test", "")

	for _, testCase := range []struct {
		statusCode    int
		authorization string
		url           string
	}{
		{401, "", "/test/metrics"},
		{401, "Bearer ", "/test/metrics"},
		{401, "Bearer", "/test/metrics"},
		{401, "Bearer invalid-token", "/test/metrics"},
		{200, "Bearer " + prometheusAccessToken, "/test/metrics"},
		{200, "", "/test/metrics?access_token=" + prometheusAccessToken},
		{401, "", "/test/metrics?access_token=invalid_token"},
	} {
		t.Run("URL: "+testCase.url+", Authorization: "+testCase.authorization, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", testCase.url, nil)
			r.Header.Set("Authorization", testCase.authorization)
			mux.ServeHTTP(w, r)
			assert.Equal(t, testCase.statusCode, w.Code)

			if testCase.statusCode == http.StatusOK {
				assert.Contains(t, w.Body.String(), "relay_frames_total")
			}
		})
	}
}
