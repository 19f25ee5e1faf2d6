package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-tracker/internal/domain/entity"
	"github.com/jhoicas/warehouse-tracker/internal/infrastructure/xlsx"
)

// setupFileStore escribe un libro de prueba y apunta la configuración a él.
func setupFileStore(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	items := entity.NewTable("Part Reference", "Description", "Quantity", "Min Level", "Max Level")
	items.Append(map[string]any{"Part Reference": "A1", "Description": "Tornillo", "Quantity": 5.0, "Min Level": 10.0, "Max Level": 20.0})
	items.Append(map[string]any{"Part Reference": "B2", "Description": "Tuerca", "Quantity": 15.0, "Min Level": 10.0, "Max Level": 20.0})
	data, err := xlsx.NewCodec("", "").Encode(entity.NewDocument(items, nil))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stock.xlsx"), data, 0o644))

	t.Setenv("STORE_BACKEND", "file")
	t.Setenv("FILE_STORE_DIR", dir)
	t.Setenv("DOCUMENT_PATH", "stock.xlsx")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("NATS_URL", "")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidate(t *testing.T) {
	setupFileStore(t)

	out, err := run(t, "validate")
	require.NoError(t, err)

	var report validateReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "file", report.Backend)
	assert.Equal(t, "stock.xlsx", report.Name)
	assert.Equal(t, 2, report.Items)
	assert.Equal(t, 0, report.LogEntries)
	assert.Contains(t, report.Columns, "Quantity")
}

func TestItems_Low(t *testing.T) {
	setupFileStore(t)

	out, err := run(t, "items", "--threshold", "low")
	require.NoError(t, err)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "A1", rows[0]["Part Reference"])

	_, err = run(t, "items", "--threshold", "medio")
	assert.Error(t, err)
}

func TestAdjust_YLogs(t *testing.T) {
	setupFileStore(t)

	out, err := run(t, "adjust", "A1", "3", "--user", "ana")
	require.NoError(t, err)
	assert.JSONEq(t, `{"partRef":"A1","quantity":8}`, out)

	out, err = run(t, "adjust", "A1", "--delta", "-2", "--user", "bob")
	require.NoError(t, err)
	assert.JSONEq(t, `{"partRef":"A1","quantity":6}`, out)

	out, err = run(t, "logs", "--part-ref", "A1")
	require.NoError(t, err)
	var logs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &logs))
	require.Len(t, logs, 2)
	assert.Equal(t, "ana", logs[0]["user"])
	assert.Equal(t, "bob", logs[1]["user"])
}

func TestAdjust_ArgumentosInvalidos(t *testing.T) {
	setupFileStore(t)

	_, err := run(t, "adjust", "A1")
	assert.EqualError(t, err, "delta requerido")

	_, err = run(t, "adjust", "A1", "1.5")
	assert.Error(t, err)

	_, err = run(t, "adjust", "A1", "2", "--delta", "3")
	assert.Error(t, err)
}

func TestJournal_SinBaseDeDatos(t *testing.T) {
	setupFileStore(t)

	_, err := run(t, "journal")
	assert.EqualError(t, err, "DATABASE_URL no configurada")

	_, err = run(t, "migrate")
	assert.EqualError(t, err, "DATABASE_URL no configurada")
}
