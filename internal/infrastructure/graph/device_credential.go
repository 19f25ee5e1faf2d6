package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/oauth2"

	"github.com/jhoicas/warehouse-tracker/internal/application/ports"
	"github.com/jhoicas/warehouse-tracker/internal/domain"
	"github.com/jhoicas/warehouse-tracker/pkg/logger"
)

// Verificar en tiempo de compilación que ambos tipos implementan TokenProvider.
var (
	_ ports.TokenProvider = (*DeviceCredential)(nil)
	_ ports.TokenProvider = StaticToken("")
)

// DefaultAuthorityURL autoridad de Microsoft identity platform.
const DefaultAuthorityURL = "https://login.microsoftonline.com"

// CredentialOptions parámetros del flujo de código de dispositivo.
type CredentialOptions struct {
	ClientID     string
	TenantID     string   // "common" si vacío
	Scopes       []string // p. ej. Files.ReadWrite offline_access
	AuthorityURL string   // DefaultAuthorityURL si vacío
	CachePath    string   // archivo JSON del token; vacío = sin caché
	Prompt       io.Writer
}

// DeviceCredential obtiene y renueva el access token de Graph con el flujo
// OAuth 2.0 de código de dispositivo. Es un objeto de larga vida: se autentica
// una vez al arrancar y luego renueva con el refresh token.
type DeviceCredential struct {
	cfg       *oauth2.Config
	cachePath string
	prompt    io.Writer
	log       *logger.Logger

	mu         sync.Mutex
	src        oauth2.TokenSource
	lastAccess string
}

// NewDeviceCredential construye la credencial sin contactar al proveedor.
func NewDeviceCredential(opts CredentialOptions, log *logger.Logger) *DeviceCredential {
	tenant := opts.TenantID
	if tenant == "" {
		tenant = "common"
	}
	authority := strings.TrimRight(opts.AuthorityURL, "/")
	if authority == "" {
		authority = DefaultAuthorityURL
	}
	base := authority + "/" + tenant + "/oauth2/v2.0"
	prompt := opts.Prompt
	if prompt == nil {
		prompt = os.Stderr
	}
	return &DeviceCredential{
		cfg: &oauth2.Config{
			ClientID: opts.ClientID,
			Scopes:   opts.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:       base + "/authorize",
				TokenURL:      base + "/token",
				DeviceAuthURL: base + "/devicecode",
				AuthStyle:     oauth2.AuthStyleInParams,
			},
		},
		cachePath: opts.CachePath,
		prompt:    prompt,
		log:       logger.OrNop(log).Component("graph.auth"),
	}
}

// Authenticate deja la credencial lista. Usa el token en caché si todavía sirve
// (vigente o renovable); si no, ejecuta el flujo de dispositivo y espera a que
// el usuario complete el inicio de sesión.
func (c *DeviceCredential) Authenticate(ctx context.Context) error {
	if c.cfg.ClientID == "" {
		return fmt.Errorf("%w: client id requerido", domain.ErrAuthFailure)
	}
	// La renovación ocurre mucho después del arranque: no hereda la cancelación.
	refreshCtx := context.WithoutCancel(ctx)

	if tok := c.loadCache(); tok != nil {
		src := c.cfg.TokenSource(refreshCtx, tok)
		fresh, err := src.Token()
		if err == nil {
			c.install(src, fresh)
			c.log.Info().Msg("token recuperado de la caché")
			return nil
		}
		c.log.Warn().Err(err).Msg("token en caché inválido, se solicita uno nuevo")
	}

	da, err := c.cfg.DeviceAuth(ctx)
	if err != nil {
		return fmt.Errorf("%w: solicitar código de dispositivo: %v", domain.ErrAuthFailure, err)
	}
	c.showPrompt(da)

	tok, err := c.cfg.DeviceAccessToken(ctx, da)
	if err != nil {
		return fmt.Errorf("%w: esperar autorización: %v", domain.ErrAuthFailure, err)
	}
	c.install(c.cfg.TokenSource(refreshCtx, tok), tok)
	c.log.Info().Msg("autenticación por código de dispositivo completada")
	return nil
}

// Token devuelve un access token vigente, renovándolo si expiró.
func (c *DeviceCredential) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.src == nil {
		return "", fmt.Errorf("%w: credencial no autenticada", domain.ErrAuthFailure)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tok, err := c.src.Token()
	if err != nil {
		return "", fmt.Errorf("%w: renovar token: %v", domain.ErrAuthFailure, err)
	}
	if tok.AccessToken != c.lastAccess {
		c.lastAccess = tok.AccessToken
		c.saveCache(tok)
	}
	return tok.AccessToken, nil
}

func (c *DeviceCredential) install(src oauth2.TokenSource, tok *oauth2.Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.src = src
	c.lastAccess = tok.AccessToken
	c.saveCache(tok)
}

func (c *DeviceCredential) showPrompt(da *oauth2.DeviceAuthResponse) {
	uri := da.VerificationURIComplete
	if uri == "" {
		uri = da.VerificationURI
	}
	fmt.Fprintf(c.prompt, "Para iniciar sesión abra %s e ingrese el código %s\n", uri, da.UserCode)
	c.log.Info().Str("verification_uri", uri).Str("user_code", da.UserCode).
		Msg("esperando autorización del dispositivo")
}

// ── Caché en disco ───────────────────────────────────────────────────────────

func (c *DeviceCredential) loadCache() *oauth2.Token {
	if c.cachePath == "" {
		return nil
	}
	raw, err := os.ReadFile(c.cachePath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			c.log.Warn().Err(err).Str("path", c.cachePath).Msg("no se pudo leer la caché de token")
		}
		return nil
	}
	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		c.log.Warn().Err(err).Str("path", c.cachePath).Msg("caché de token corrupta")
		return nil
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil
	}
	return &tok
}

func (c *DeviceCredential) saveCache(tok *oauth2.Token) {
	if c.cachePath == "" {
		return
	}
	raw, err := json.Marshal(tok)
	if err == nil {
		if dir := filepath.Dir(c.cachePath); dir != "" {
			err = os.MkdirAll(dir, 0o700)
		}
	}
	if err == nil {
		err = os.WriteFile(c.cachePath, raw, 0o600)
	}
	if err != nil {
		c.log.Warn().Err(err).Str("path", c.cachePath).Msg("no se pudo guardar la caché de token")
	}
}

// StaticToken proveedor con un token fijo (pruebas, tokens emitidos fuera de banda).
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	if t == "" {
		return "", fmt.Errorf("%w: token vacío", domain.ErrAuthFailure)
	}
	return string(t), nil
}
