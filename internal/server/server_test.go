package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almahdi/dentalbot/internal/database"
	"github.com/almahdi/dentalbot/internal/reminder"
	"github.com/almahdi/dentalbot/internal/slots"
)

type fakeSender struct {
	sent int
}

func (f *fakeSender) SendMessage(_ context.Context, _ *bot.SendMessageParams) (*models.Message, error) {
	f.sent++
	return &models.Message{ID: f.sent}, nil
}

func newTestServer(t *testing.T) (*Server, database.Store, *fakeSender) {
	t.Helper()

	db, err := sqlx.Connect("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.ApplyMigrations(db.DB))

	store := database.NewStore(db, nil)
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.FixedZone("GST", 4*60*60))
	mgr := slots.NewManager(store, nil).WithClock(func() time.Time { return now })

	sender := &fakeSender{}
	reminders := reminder.NewDispatcher(store, mgr, sender, nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return New(":0", store, reminders, logger), store, sender
}

func TestHealthEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestManualReminderRun(t *testing.T) {
	srv, store, sender := newTestServer(t)
	ctx := context.Background()

	lang := "en"
	name := "Ann"
	require.NoError(t, store.UpsertUser(ctx, database.UserUpdate{ChatID: 1, Lang: &lang, Name: &name}))
	require.NoError(t, store.InsertSlot(ctx, "2026-09-01 10:00"))
	ok, err := store.BookSlot(ctx, "2026-09-01 10:00", 1)
	require.NoError(t, err)
	require.True(t, ok)

	req := httptest.NewRequest(http.MethodPost, "/reminders/run", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]int
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 1, body["sent"])
	assert.Equal(t, 1, sender.sent)

	// Triggering again sends nothing new.
	rec = httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reminders/run", nil))
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 0, body["sent"])
}

func TestHealthReportsDegradedDatabase(t *testing.T) {
	db, err := sqlx.Connect("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.ApplyMigrations(db.DB))
	store := database.NewStore(db, nil)
	require.NoError(t, db.Close())

	mgr := slots.NewManager(store, nil)
	reminders := reminder.NewDispatcher(store, mgr, &fakeSender{}, nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(":0", store, reminders, logger)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
