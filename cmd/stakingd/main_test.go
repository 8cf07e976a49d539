package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"stakeplatform/observability/logging"
	telemetry "stakeplatform/observability/otel"
)

func TestTracingAttrsMaskHeaderValues(t *testing.T) {
	attrs := tracingAttrs(telemetry.Config{
		Endpoint: "collector:4318",
		Insecure: true,
		Headers:  telemetry.ParseHeaders("authorization=Bearer abc123, user-agent=stakingd/1"),
	})

	got := map[string]string{}
	for _, a := range attrs {
		attr, ok := a.(slog.Attr)
		require.True(t, ok)
		got[attr.Key] = attr.Value.String()
	}
	require.Equal(t, "collector:4318", got["endpoint"])
	require.Equal(t, "true", got["insecure"])
	require.Equal(t, logging.RedactedValue, got["header_authorization"])
	require.Equal(t, "stakingd/1", got["header_user-agent"])
}
