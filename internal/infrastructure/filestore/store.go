package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jhoicas/warehouse-tracker/internal/domain"
	"github.com/jhoicas/warehouse-tracker/internal/domain/entity"
	"github.com/jhoicas/warehouse-tracker/internal/domain/repository"
)

var (
	_ repository.DocumentStore     = (*Store)(nil)
	_ repository.DocumentInspector = (*Store)(nil)
)

// Store DocumentStore sobre el sistema de archivos local (desarrollo y pruebas).
// La escritura va a un temporal en el mismo directorio y se renombra, de modo
// que un lector nunca ve un archivo a medio escribir.
type Store struct {
	root string
}

// New crea el store con raíz root ("." si vacío).
func New(root string) *Store {
	if root == "" {
		root = "."
	}
	return &Store{root: root}
}

func (s *Store) path(ref entity.DocumentRef) string {
	name := ref.Path
	if ref.ID != "" {
		name = ref.ID
	}
	return filepath.Join(s.root, filepath.FromSlash(name))
}

func (s *Store) Download(ctx context.Context, ref entity.DocumentRef) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(ref))
	if err != nil {
		return nil, wrap("leer", ref, err)
	}
	return data, nil
}

func (s *Store) Upload(ctx context.Context, ref entity.DocumentRef, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target := s.path(ref)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return wrap("crear directorio", ref, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return wrap("crear temporal", ref, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return wrap("escribir", ref, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return wrap("sincronizar", ref, err)
	}
	if err := tmp.Close(); err != nil {
		return wrap("cerrar", ref, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return wrap("reemplazar", ref, err)
	}
	return nil
}

func (s *Store) Stat(ctx context.Context, ref entity.DocumentRef) (*entity.DocumentInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fi, err := os.Stat(s.path(ref))
	if err != nil {
		return nil, wrap("consultar", ref, err)
	}
	return &entity.DocumentInfo{
		Name:       fi.Name(),
		Size:       fi.Size(),
		ModifiedAt: fi.ModTime().UTC(),
	}, nil
}

func wrap(op string, ref entity.DocumentRef, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s %s: el archivo no existe", domain.ErrStoreUnavailable, op, ref)
	}
	return fmt.Errorf("%w: %s %s: %v", domain.ErrStoreUnavailable, op, ref, err)
}
