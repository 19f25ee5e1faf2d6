package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-tracker/internal/domain"
	"github.com/jhoicas/warehouse-tracker/internal/domain/entity"
	"github.com/jhoicas/warehouse-tracker/internal/infrastructure/filestore"
)

func TestStore_SubirReemplazaCompleto(t *testing.T) {
	root := t.TempDir()
	store := filestore.New(root)
	ref := entity.DocumentRef{Path: "bodega/warehouse-tracker.xlsx"}
	ctx := context.Background()

	require.NoError(t, store.Upload(ctx, ref, []byte("versión 1 larga")))
	require.NoError(t, store.Upload(ctx, ref, []byte("v2")))

	got, err := store.Download(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	entries, err := os.ReadDir(filepath.Join(root, "bodega"))
	require.NoError(t, err)
	require.Len(t, entries, 1, "no quedan temporales")

	info, err := store.Stat(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "warehouse-tracker.xlsx", info.Name)
	assert.Equal(t, int64(2), info.Size)
}

func TestStore_ArchivoInexistente(t *testing.T) {
	store := filestore.New(t.TempDir())
	_, err := store.Download(context.Background(), entity.DocumentRef{Path: "nada.xlsx"})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestStore_ContextoCancelado(t *testing.T) {
	store := filestore.New(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := store.Upload(ctx, entity.DocumentRef{Path: "a.xlsx"}, []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}
