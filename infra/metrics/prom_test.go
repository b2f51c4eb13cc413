package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/andrewgierens/tessie2mqtt/core/metrics"
)

func TestPromSink_RecordsEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordRefresh(coremetrics.RefreshEvent{Vehicles: 2, Time: time.Now()}))
	require.NoError(t, sink.RecordRefresh(coremetrics.RefreshEvent{Error: "api down", Time: time.Now()}))
	require.NoError(t, sink.RecordCommand(coremetrics.CommandEvent{Action: "on", Success: true, Latency: 50 * time.Millisecond}))
	require.NoError(t, sink.RecordFleetSize(3))

	assert.Equal(t, float64(1), testutil.ToFloat64(sink.refreshes.WithLabelValues("ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(sink.refreshes.WithLabelValues("error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(sink.commands.WithLabelValues("on", "true")))
	assert.Equal(t, float64(3), testutil.ToFloat64(sink.fleet))
}

func TestPromSink_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	require.NoError(t, err)
	_, err = NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	require.NoError(t, err, "re-registration must reuse existing collectors")
}
