package httptransport

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewServerAppliesConfig(t *testing.T) {
	handler := http.NewServeMux()
	srv := NewServer(DefaultServerConfig(":9000"), handler)

	require.Equal(t, ":9000", srv.Addr)
	require.Equal(t, 10*time.Second, srv.ReadTimeout)
	require.Equal(t, 10*time.Second, srv.ReadHeaderTimeout)
	require.Equal(t, 30*time.Second, srv.WriteTimeout)
	require.Equal(t, 60*time.Second, srv.IdleTimeout)
	require.Same(t, handler, srv.Handler)
}
