package testserver

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/feldzeit/geoattend/internal/api"
	"github.com/feldzeit/geoattend/internal/domain/telemetry"
	"github.com/feldzeit/geoattend/internal/domain/tracking"
	"github.com/feldzeit/geoattend/internal/sqlite"
	"github.com/stretchr/testify/require"
)

// TestServer runs the full API over a real in-memory database.
type TestServer struct {
	Server   *httptest.Server
	DB       *sqlite.DB
	Tracking *tracking.Service
}

// New builds a server with the given thresholds. Pass
// tracking.DefaultThresholds() for production tuning.
func New(t *testing.T, th tracking.Thresholds) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	sessionRepo := sqlite.NewSessionRepository(db)
	eventRepo := sqlite.NewEventRepository(db)

	trackingSvc := tracking.NewService(sessionRepo, eventRepo, nil, nil, th, nil)
	telemetrySvc := telemetry.NewService(sessionRepo, eventRepo, nil)

	handler := api.NewHandler(trackingSvc, telemetrySvc, nil)
	server := httptest.NewServer(handler.Routes())

	ts := &TestServer{
		Server:   server,
		DB:       db,
		Tracking: trackingSvc,
	}

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return ts
}
