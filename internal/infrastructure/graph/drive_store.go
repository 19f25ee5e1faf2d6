package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jhoicas/warehouse-tracker/internal/application/ports"
	"github.com/jhoicas/warehouse-tracker/internal/domain"
	"github.com/jhoicas/warehouse-tracker/internal/domain/entity"
	"github.com/jhoicas/warehouse-tracker/internal/domain/repository"
)

var (
	_ repository.DocumentStore     = (*DriveStore)(nil)
	_ repository.DocumentInspector = (*DriveStore)(nil)
)

const (
	// DefaultBaseURL raíz de Microsoft Graph v1.0.
	DefaultBaseURL = "https://graph.microsoft.com/v1.0"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	errorBodyLimit  = 4 * 1024
)

// DriveStore adaptador de DocumentStore sobre el OneDrive del usuario autenticado.
// El documento se direcciona por ID de drive item o por ruta relativa a la raíz.
type DriveStore struct {
	baseURL    string
	tokens     ports.TokenProvider
	httpClient *http.Client
}

// NewDriveStore construye el adaptador. timeout acota cada llamada completa
// (incluida la redirección de descarga).
func NewDriveStore(baseURL string, tokens ports.TokenProvider, timeout time.Duration) *DriveStore {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &DriveStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout:       timeout,
			Transport:     otelhttp.NewTransport(http.DefaultTransport),
			CheckRedirect: dropAuthOnRedirect,
		},
	}
}

// dropAuthOnRedirect quita el bearer en cada salto: la URL de descarga de
// /content ya viene pre-autenticada.
func dropAuthOnRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= 10 {
		return errors.New("graph: demasiadas redirecciones")
	}
	req.Header.Del("Authorization")
	return nil
}

// Download descarga el binario completo. Graph responde con una redirección a
// una URL pre-autenticada que el cliente sigue sin reenviar el bearer.
func (s *DriveStore) Download(ctx context.Context, ref entity.DocumentRef) ([]byte, error) {
	resp, err := s.do(ctx, http.MethodGet, s.itemURL(ref, "/content"), nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: leer contenido: %v", domain.ErrStoreUnavailable, err)
	}
	return data, nil
}

// Upload reemplaza el contenido completo del archivo (sin control de versión).
func (s *DriveStore) Upload(ctx context.Context, ref entity.DocumentRef, data []byte) error {
	resp, err := s.do(ctx, http.MethodPut, s.itemURL(ref, "/content"), data, xlsxContentType)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

type driveItem struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Size                 int64     `json:"size"`
	LastModifiedDateTime time.Time `json:"lastModifiedDateTime"`
	ETag                 string    `json:"eTag"`
}

// Stat devuelve los metadatos del drive item.
func (s *DriveStore) Stat(ctx context.Context, ref entity.DocumentRef) (*entity.DocumentInfo, error) {
	resp, err := s.do(ctx, http.MethodGet, s.itemURL(ref, ""), nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var item driveItem
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, fmt.Errorf("%w: deserializar drive item: %v", domain.ErrStoreUnavailable, err)
	}
	return &entity.DocumentInfo{
		ID:         item.ID,
		Name:       item.Name,
		Size:       item.Size,
		ModifiedAt: item.LastModifiedDateTime,
		ETag:       item.ETag,
	}, nil
}

// itemURL /me/drive/items/{id}{suffix} o /me/drive/root:/{path}:{suffix}.
func (s *DriveStore) itemURL(ref entity.DocumentRef, suffix string) string {
	if ref.ID != "" {
		return s.baseURL + "/me/drive/items/" + url.PathEscape(ref.ID) + suffix
	}
	parts := strings.Split(strings.Trim(ref.Path, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return s.baseURL + "/me/drive/root:/" + strings.Join(parts, "/") + ":" + suffix
}

// do ejecuta la petición con el bearer actual y traduce toda respuesta no 2xx a
// un error de dominio. El llamador cierra el Body de la respuesta exitosa.
func (s *DriveStore) do(ctx context.Context, method, target string, body []byte, contentType string) (*http.Response, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("graph: crear request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: timeout o cancelación: %v", domain.ErrStoreUnavailable, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %s %s: %v", domain.ErrStoreUnavailable, method, target, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	detail := graphErrorMessage(raw)
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w: Graph HTTP %d: %s", domain.ErrAuthFailure, resp.StatusCode, detail)
	default:
		return nil, fmt.Errorf("%w: Graph HTTP %d: %s", domain.ErrStoreUnavailable, resp.StatusCode, detail)
	}
}

// graphErrorMessage extrae error.message del cuerpo de error de Graph o devuelve el texto crudo.
func graphErrorMessage(raw []byte) string {
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error.Message != "" {
		return payload.Error.Code + ": " + payload.Error.Message
	}
	return strings.TrimSpace(string(raw))
}
