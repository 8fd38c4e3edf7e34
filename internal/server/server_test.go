package server_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/norbu09/memtier/internal/server"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestServerCreation(t *testing.T) {
	srv := server.New("test-version", testLogger())
	require.NotNil(t, srv)
	require.NotNil(t, srv.MCPServer())

	// Setup should not panic
	srv.Setup()
}

func TestServerWithInMemoryTransport(t *testing.T) {
	srv := server.New("0.1.0-test", testLogger())
	srv.Setup()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.MCPServer().Run(ctx, serverTransport)
	}()
	time.Sleep(50 * time.Millisecond)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err, "client should connect successfully")

	initResult := session.InitializeResult()
	require.NotNil(t, initResult)
	assert.Equal(t, "memtier", initResult.ServerInfo.Name)
	assert.Equal(t, "0.1.0-test", initResult.ServerInfo.Version)

	toolsResult, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, toolsResult.Tools, "no tools registered yet")

	require.NoError(t, session.Close())
	cancel()

	select {
	case err := <-serverErr:
		// EOF is expected when the client disconnects
		if err != nil {
			t.Logf("server stopped with: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("server did not stop within timeout")
	}
}

func TestServerRespondsToMultipleRequests(t *testing.T) {
	srv := server.New("0.1.0-test", testLogger())
	srv.Setup()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	go func() {
		_ = srv.MCPServer().Run(ctx, serverTransport)
	}()
	time.Sleep(50 * time.Millisecond)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	for i := 0; i < 3; i++ {
		_, err := session.ListTools(ctx, nil)
		require.NoError(t, err, "request %d should succeed", i)
	}
}
