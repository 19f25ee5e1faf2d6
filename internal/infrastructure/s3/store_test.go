package s3_test

import (
	"context"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-tracker/internal/domain"
	"github.com/jhoicas/warehouse-tracker/internal/domain/entity"
	"github.com/jhoicas/warehouse-tracker/internal/infrastructure/s3"
)

// fakeS3 servidor mínimo con direccionamiento path-style: /{bucket}/{key}.
func fakeS3(t *testing.T, objects map[string][]byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(fakeS3Handler(objects))
}

func fakeS3Handler(objects map[string][]byte) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			data, ok := objects[r.URL.Path]
			if !ok {
				w.Header().Set("Content-Type", "application/xml")
				w.WriteHeader(http.StatusNotFound)
				_, _ = io.WriteString(w, `<Error><Code>NoSuchKey</Code><Message>no existe</Message></Error>`)
				return
			}
			_, _ = w.Write(data)
		case http.MethodPut:
			if r.Header.Get("Authorization") == "" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			data, _ := io.ReadAll(r.Body)
			objects[r.URL.Path] = data
			w.WriteHeader(http.StatusOK)
		case http.MethodHead:
			if _, ok := objects[r.URL.Path]; !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Header().Set("ETag", `"abc"`)
			w.Header().Set("Content-Length", "5")
			w.Header().Set("Last-Modified", "Wed, 01 May 2024 10:00:00 GMT")
			w.WriteHeader(http.StatusOK)
		}
	})
}

func newStore(t *testing.T, endpoint string) *s3.Store {
	t.Helper()
	store, err := s3.NewStore(context.Background(), s3.Options{
		Endpoint:       endpoint,
		Region:         "us-east-1",
		Bucket:         "inventario",
		AccessKey:      "test",
		SecretKey:      "test-secret",
		ForcePathStyle: true,
		Timeout:        5 * time.Second,
	})
	require.NoError(t, err)
	return store
}

func TestStore_SubirYDescargar(t *testing.T) {
	objects := map[string][]byte{}
	srv := fakeS3(t, objects)
	defer srv.Close()
	store := newStore(t, srv.URL)
	ref := entity.DocumentRef{Path: "/bodega/warehouse-tracker.xlsx"}

	require.NoError(t, store.Upload(context.Background(), ref, []byte("libro")))
	assert.Equal(t, []byte("libro"), objects["/inventario/bodega/warehouse-tracker.xlsx"])

	got, err := store.Download(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("libro"), got)

	info, err := store.Stat(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size)
	assert.Equal(t, `"abc"`, info.ETag)
}

func TestStore_ObjetoInexistente(t *testing.T) {
	srv := fakeS3(t, map[string][]byte{})
	defer srv.Close()
	store := newStore(t, srv.URL)

	_, err := store.Download(context.Background(), entity.DocumentRef{ID: "no-existe.xlsx"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	_, err = store.Stat(context.Background(), entity.DocumentRef{ID: "no-existe.xlsx"})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestNewStore_SinBucket(t *testing.T) {
	_, err := s3.NewStore(context.Background(), s3.Options{})
	assert.Error(t, err)
}

func TestNewStore_ConCABundle(t *testing.T) {
	objects := map[string][]byte{}
	srv := httptest.NewTLSServer(fakeS3Handler(objects))
	defer srv.Close()

	// El certificado del servidor solo es confiable a través del bundle.
	bundle := filepath.Join(t.TempDir(), "ca.pem")
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw})
	require.NoError(t, os.WriteFile(bundle, pemBytes, 0o600))
	t.Setenv("AWS_CA_BUNDLE", bundle)

	store := newStore(t, srv.URL)
	ref := entity.DocumentRef{Path: "warehouse-tracker.xlsx"}
	require.NoError(t, store.Upload(context.Background(), ref, []byte("libro")))

	got, err := store.Download(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("libro"), got)
}
