package server_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"io/ioutil"
	"math/big"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/sigrelay/sigrelay/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"nhooyr.io/websocket"
)

var handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("hello"))
})

// writeTestCert writes a self signed certificate for 127.0.0.1 to dir.
func writeTestCert(t *testing.T, dir string) (certFile, keyFile string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{Organization: []string{"sigrelay test"}},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	require.NoError(t, err)

	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	certFile = filepath.Join(dir, "cert.pem")
	keyFile = filepath.Join(dir, "cert.key")

	err = ioutil.WriteFile(certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600)
	require.NoError(t, err)

	err = ioutil.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0o600)
	require.NoError(t, err)

	return certFile, keyFile
}

func listen(t *testing.T) (net.Listener, int) {
	t.Helper()

	addr := net.JoinHostPort("127.0.0.1", "0")
	l, err := net.Listen("tcp", addr)
	require.Nil(t, err, "error listening to: %s", addr)

	return l, l.Addr().(*net.TCPAddr).Port
}

func TestServer_HTTP(t *testing.T) {
	defer goleak.VerifyNone(t)

	l, port := listen(t)
	s := server.New(server.Params{}, handler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)

	go func() {
		errCh <- s.Start(ctx, l)
	}()

	c := http.Client{
		Transport: &http.Transport{DisableKeepAlives: true},
	}
	url := fmt.Sprintf("http://127.0.0.1:%d", port)
	r, err := http.NewRequest("GET", url, nil)
	require.Nil(t, err, "error creating new request")
	res, err := c.Do(r)
	require.Nil(t, err, "error executing request")
	body, err := ioutil.ReadAll(res.Body)
	res.Body.Close()
	require.Nil(t, err, "error reading body")
	require.Equal(t, []byte("hello"), body)

	cancel()
	assert.NoError(t, <-errCh)
}

func TestServer_HTTPS(t *testing.T) {
	defer goleak.VerifyNone(t)

	certFile, keyFile := writeTestCert(t, t.TempDir())

	l, port := listen(t)
	params := server.Params{
		TLSCertFile: certFile,
		TLSKeyFile:  keyFile,
	}
	s := server.New(params, handler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)

	go func() {
		errCh <- s.Start(ctx, l)
	}()

	c := http.Client{
		Transport: &http.Transport{
			TLSClientConfig:   &tls.Config{InsecureSkipVerify: true},
			DisableKeepAlives: true,
		},
	}
	url := fmt.Sprintf("https://127.0.0.1:%d", port)
	r, err := http.NewRequest("GET", url, nil)
	require.Nil(t, err, "error creating new request")
	res, err := c.Do(r)
	require.Nil(t, err, "error executing request")
	body, err := ioutil.ReadAll(res.Body)
	res.Body.Close()
	require.Nil(t, err, "error reading body")
	require.Equal(t, []byte("hello"), body)

	cancel()
	assert.NoError(t, <-errCh)
}

func TestServer_missingCert(t *testing.T) {
	l, _ := listen(t)
	s := server.New(server.Params{
		TLSCertFile: "/missing/cert.pem",
		TLSKeyFile:  "/missing/cert.key",
	}, handler)

	err := s.Start(context.Background(), l)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start server")
}

// Open websockets are hijacked and would otherwise outlive the server.
func TestServer_closesWebsocketsOnShutdown(t *testing.T) {
	l, port := listen(t)

	mux := newTestMux("", "")
	s := server.New(server.Params{}, mux)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)

	go func() {
		errCh <- s.Start(ctx, l)
	}()

	dialCtx, dialCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer dialCancel()

	ws, _, err := websocket.Dial(dialCtx, fmt.Sprintf("ws://127.0.0.1:%d/ws", port), nil)
	require.NoError(t, err)

	cancel()
	assert.NoError(t, <-errCh)

	_, _, err = ws.Read(dialCtx)
	assert.Error(t, err, "the server side should close the websocket")
	assert.NoError(t, dialCtx.Err(), "read should fail before the timeout")
}
