// AngelaMos | 2026
// server_test.go

package server

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/resource-directory/internal/config"
	"github.com/carterperez-dev/templates/resource-directory/internal/health"
)

func TestServer_ServeAndShutdown(t *testing.T) {
	hh := health.NewHandler()
	srv := New(Config{
		ServerConfig: config.ServerConfig{
			Host:         "127.0.0.1",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
			IdleTimeout:  time.Second,
		},
		HealthHandler: hh,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	hh.RegisterRoutes(srv.Router())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	served := make(chan error, 1)
	go func() { served <- srv.Serve(ln) }()

	url := "http://" + ln.Addr().String()

	resp, err := http.Get(url + "/readyz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx, 10*time.Millisecond))

	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}

	_, err = http.Get(url + "/readyz")
	assert.Error(t, err)
}
