package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/gmattworld/applibry-api/internal/models"
	"github.com/gmattworld/applibry-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, "json", slog.LevelInfo))

	logger.Debug("hidden")
	logger.Info("visible", "path", "/api/health")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"visible"`)
	assert.Contains(t, buf.String(), `"path":"/api/health"`)
}

func TestNewHandler_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, "text", slog.LevelInfo))

	logger.Error("boom", "error", errors.New("disk full"))

	out := buf.String()
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "disk full")
	assert.NotContains(t, out, "\x1b[", "non-terminal output must not be colored")
}

type recorder struct {
	level slog.Level
	got   []string
}

func (r *recorder) Enabled(_ context.Context, l slog.Level) bool { return l >= r.level }
func (r *recorder) Handle(_ context.Context, rec slog.Record) error {
	r.got = append(r.got, rec.Message)
	return nil
}
func (r *recorder) WithAttrs([]slog.Attr) slog.Handler { return r }
func (r *recorder) WithGroup(string) slog.Handler { return r }

func TestMultiHandler_RespectsEachLevel(t *testing.T) {
	info := &recorder{level: slog.LevelInfo}
	errs := &recorder{level: slog.LevelError}
	logger := slog.New(NewMultiHandler(info, errs))

	logger.Info("started")
	logger.Error("failed")

	assert.Equal(t, []string{"started", "failed"}, info.got)
	assert.Equal(t, []string{"failed"}, errs.got)
}

func TestPGHandler_PersistsErrorsOnStop(t *testing.T) {
	db := testutil.NewDB(t)
	h := NewPGHandler(db)
	logger := slog.New(h).With("request_id", "req-1")

	logger.Warn("ignored")
	logger.Error("request failed",
		"error", "database unavailable",
		"method", "GET",
		"path", "/api/v1/apps",
		"user_id", uuid.Nil.String(),
		"attempt", 2,
	)
	h.Stop()

	var logs []models.SystemLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)

	entry := logs[0]
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "request failed", entry.Message)
	assert.Equal(t, "req-1", entry.TraceID)
	assert.Equal(t, "GET", entry.Method)
	assert.Equal(t, "/api/v1/apps", entry.Path)
	assert.Equal(t, "database unavailable", entry.Error)
	require.NotNil(t, entry.UserID)
	assert.JSONEq(t, `{"attempt":2}`, string(entry.Extra))
}

func TestPurgeBefore(t *testing.T) {
	db := testutil.NewDB(t)
	now := time.Now().UTC()
	require.NoError(t, db.Create(&[]models.SystemLog{
		{ID: uuid.New(), Timestamp: now.AddDate(0, 0, -40), Level: "ERROR", Message: "old"},
		{ID: uuid.New(), Timestamp: now.Add(-time.Hour), Level: "ERROR", Message: "recent"},
	}).Error)

	deleted, err := PurgeBefore(db, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining []models.SystemLog
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "recent", remaining[0].Message)
}

type failing struct{ recorder }

func (f *failing) Handle(context.Context, slog.Record) error { return errors.New("sink down") }

func TestMultiHandler_KeepsGoingPastAFailingSink(t *testing.T) {
	broken := &failing{recorder{level: slog.LevelInfo}}
	healthy := &recorder{level: slog.LevelInfo}
	h := NewMultiHandler(broken, nil, healthy)

	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "hello", 0))

	assert.EqualError(t, err, "sink down")
	assert.Equal(t, []string{"hello"}, healthy.got)
}
