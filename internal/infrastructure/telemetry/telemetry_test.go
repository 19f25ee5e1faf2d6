package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-tracker/internal/infrastructure/telemetry"
)

func TestInit_SinEndpointEsNoop(t *testing.T) {
	shutdown, err := telemetry.Init(context.Background(), "warehouse-tracker", "test", "")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_ConEndpoint(t *testing.T) {
	// El exporter no conecta hasta exportar: construirlo no requiere colector.
	shutdown, err := telemetry.Init(context.Background(), "warehouse-tracker", "test", "http://127.0.0.1:4318")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
