package logx

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/tasknotify/internal/model"
)

func TestSinkLogsOperationAndError(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSink(zerolog.New(&buf))

	sink.Report("poller.cycle", errors.New("connection refused"))
	sink.Report("poller.cue", nil)

	out := buf.String()
	assert.Contains(t, out, `"op":"poller.cycle"`)
	assert.Contains(t, out, `"err":"connection refused"`)
	assert.NotContains(t, out, "poller.cue")
}

func TestCronLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewCronLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))

	l.Error(errors.New("panic in job"), "job failed", "entry", 3)

	assert.Contains(t, buf.String(), `"component":"cron"`)
	assert.Contains(t, buf.String(), `"entry":3`)
}

func TestNewFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tasknotify.log")

	log, closer, err := NewFile(model.LogConfig{Level: "debug", File: path})
	require.NoError(t, err)
	log.Debug().Msg("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, parseLevel("WARNING", zerolog.InfoLevel))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("loud", zerolog.InfoLevel))
}
