package entity_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-tracker/internal/domain/entity"
)

func TestSchema_OrdenYDuplicados(t *testing.T) {
	s := entity.NewSchema("b", "a", "b")
	assert.Equal(t, []string{"b", "a"}, s.Names())
	assert.True(t, s.Add("c"))
	assert.False(t, s.Add("a"))
	assert.Equal(t, 3, s.Len())
}

func TestTable_AppendNormalizaValores(t *testing.T) {
	tbl := entity.NewTable("ref", "qty")
	row := tbl.Append(map[string]any{"ref": "A1", "qty": 5, "notes": "", "zeta": int64(2)})

	assert.Equal(t, []string{"ref", "qty", "notes", "zeta"}, tbl.Columns())
	assert.Equal(t, map[string]any{"ref": "A1", "qty": 5.0, "notes": nil, "zeta": 2.0}, row.Values())
}

func TestRow_SetAgregaColumnaAlEsquema(t *testing.T) {
	tbl := entity.NewTable("ref")
	first := tbl.Append(map[string]any{"ref": "A1"})
	second := tbl.Append(map[string]any{"ref": "B2"})

	second.Set("bin", "R-01")

	assert.Equal(t, []string{"ref", "bin"}, tbl.Columns())
	v, ok := first.Get("bin")
	assert.True(t, ok)
	assert.Nil(t, v)
	_, ok = first.Get("missing")
	assert.False(t, ok)
}

func TestRow_MarshalJSONRespetaOrden(t *testing.T) {
	tbl := entity.NewTable("Part Reference", "Quantity", "Bin")
	row := tbl.Append(map[string]any{"Part Reference": "A1", "Quantity": 5})

	raw, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Equal(t, `{"Part Reference":"A1","Quantity":5,"Bin":null}`, string(raw))
}

func TestTable_FindExacto(t *testing.T) {
	tbl := entity.NewTable("ref")
	tbl.Append(map[string]any{"ref": "a1"})
	tbl.Append(map[string]any{"ref": "A1"})
	tbl.Append(map[string]any{"ref": "A1"})
	tbl.Append(map[string]any{"ref": 42})

	row, n := tbl.Find("ref", "A1")
	require.NotNil(t, row)
	assert.Equal(t, 2, n)
	assert.Same(t, tbl.Rows()[1], row)

	row, n = tbl.Find("ref", " A1")
	assert.Nil(t, row)
	assert.Zero(t, n)

	row, _ = tbl.Find("ref", "42")
	assert.NotNil(t, row)
}

func TestLogRecord_Values(t *testing.T) {
	rec := entity.LogRecord{
		Timestamp:      time.Date(2024, 5, 1, 10, 20, 30, 123_000_000, time.FixedZone("x", 3600)),
		PartRef:        "A1",
		Delta:          -2,
		QuantityBefore: 5,
		QuantityAfter:  3,
		User:           "bob",
	}
	tbl := entity.NewLogTable()
	row := tbl.Append(rec.Values())

	assert.Equal(t, entity.LogColumns(), tbl.Columns())
	assert.Equal(t, map[string]any{
		"timestamp":      "2024-05-01T09:20:30.123Z",
		"partRef":        "A1",
		"delta":          -2.0,
		"quantityBefore": 5.0,
		"quantityAfter":  3.0,
		"user":           "bob",
	}, row.Values())
}

func TestItemColumns_Validate(t *testing.T) {
	require.NoError(t, entity.DefaultItemColumns().Validate())

	c := entity.DefaultItemColumns()
	c.MaxLevel = c.MinLevel
	assert.Error(t, c.Validate())

	c = entity.DefaultItemColumns()
	c.Quantity = ""
	assert.Error(t, c.Validate())
}
