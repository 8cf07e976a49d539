package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetupEmitsStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := setup(&buf, " stakingd ", "dev")
	logger.Debug("stake committed", slog.String("addr", "0x01"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "stakingd", line["service"])
	require.Equal(t, "dev", line["env"])
	require.Equal(t, "DEBUG", line["severity"])
	require.Equal(t, "stake committed", line["message"])
	require.Contains(t, line, "timestamp")
	require.Equal(t, "0x01", line["addr"])
}

func TestProductionSuppressesDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := setup(&buf, "stakingd", "production")
	logger.Debug("hidden")
	require.Zero(t, buf.Len())
	logger.Info("shown")
	require.NotZero(t, buf.Len())
}

func TestSetupWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stakingd.log")
	logger := Setup("stakingd", "test", path)
	require.NotNil(t, logger)
	logger.Info("file sink ready")
	require.FileExists(t, path)
}

func TestMaskField(t *testing.T) {
	require.Equal(t, "application/x-protobuf", MaskField("Header_Content-Type", "application/x-protobuf").Value.String())
	require.Equal(t, "Header_Content-Type", MaskField("Header_Content-Type", "x").Key)
	require.Equal(t, RedactedValue, MaskField("header_authorization", "Bearer secret").Value.String())
	require.Equal(t, "", MaskField("header_api-key", "").Value.String())
}

func TestRedactDSN(t *testing.T) {
	require.Equal(t, "postgres://ledger:xxxxx@db:5432/events", RedactDSN("postgres://ledger:hunter2@db:5432/events"))
	require.Equal(t, "postgres://db/events", RedactDSN("postgres://db/events"))
	require.Equal(t, "file:events.db", RedactDSN("file:events.db"))
	require.Equal(t, "/var/lib/stakingd/events.db", RedactDSN(" /var/lib/stakingd/events.db "))
}
