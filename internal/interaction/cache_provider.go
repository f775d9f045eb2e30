package interaction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dropDatabas3/consentd/internal/cache"
	"github.com/dropDatabas3/consentd/internal/observability/logger"
)

const cacheKeyPrefix = "interaction:"

// CacheProvider implementa Provider sobre el cache compartido: el estado de
// la interacción vive como JSON bajo interaction:{id}, y el request la
// referencia con una cookie firmada (HS256) cuyo jti es el id.
type CacheProvider struct {
	cache      cache.Client
	cookieName string
	signingKey []byte
	ttl        time.Duration
}

// NewCacheProvider crea el provider. ttl acota la vida de la interacción.
func NewCacheProvider(c cache.Client, cookieName string, signingKey []byte, ttl time.Duration) *CacheProvider {
	return &CacheProvider{cache: c, cookieName: cookieName, signingKey: signingKey, ttl: ttl}
}

// Details implementa Provider. Cookie ausente, firma inválida o entrada de
// cache expirada colapsan todas en ErrSessionNotFound: para el caller no hay
// interacción utilizable.
func (p *CacheProvider) Details(ctx context.Context, r *http.Request) (*Details, error) {
	ck, err := r.Cookie(p.cookieName)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	id, err := p.verifyCookie(ck.Value)
	if err != nil {
		logger.From(ctx).Debug("cookie de interacción inválida", logger.Err(err))
		return nil, ErrSessionNotFound
	}

	raw, err := p.cache.Get(ctx, cacheKeyPrefix+id)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("interaction: leyendo %s: %w", id, err)
	}
	var d Details
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("interaction: estado corrupto %s: %w", id, err)
	}
	return &d, nil
}

// FinalizeConsent implementa Provider: registra las organizaciones aceptadas
// sobre el estado guardado y retorna la resume URI.
func (p *CacheProvider) FinalizeConsent(ctx context.Context, d *Details, organizationIDs []string) (string, error) {
	if d == nil || d.ID == "" {
		return "", ErrSessionNotFound
	}
	d.ConsentedOrganizationIDs = organizationIDs

	buf, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("interaction: serializando %s: %w", d.ID, err)
	}
	if err := p.cache.Set(ctx, cacheKeyPrefix+d.ID, string(buf), p.ttl); err != nil {
		return "", fmt.Errorf("interaction: guardando %s: %w", d.ID, err)
	}
	if d.ResumeURI != "" {
		return d.ResumeURI, nil
	}
	return d.Params.RedirectURI, nil
}

// Create persiste una interacción nueva y retorna el valor de cookie que la
// referencia. Lo usa el tooling de dev/test que siembra interacciones.
func (p *CacheProvider) Create(ctx context.Context, d *Details) (cookieValue string, err error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	buf, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("interaction: serializando %s: %w", d.ID, err)
	}
	if err := p.cache.Set(ctx, cacheKeyPrefix+d.ID, string(buf), p.ttl); err != nil {
		return "", fmt.Errorf("interaction: guardando %s: %w", d.ID, err)
	}
	return p.signCookie(d.ID)
}

// Cookie arma la http.Cookie con los atributos correctos para el valor dado.
func (p *CacheProvider) Cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     p.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(p.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (p *CacheProvider) signCookie(id string) (string, error) {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
	})
	signed, err := tok.SignedString(p.signingKey)
	if err != nil {
		return "", fmt.Errorf("interaction: firmando cookie: %w", err)
	}
	return signed, nil
}

func (p *CacheProvider) verifyCookie(raw string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return p.signingKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", err
	}
	if claims.ID == "" {
		return "", errors.New("cookie sin jti")
	}
	return claims.ID, nil
}
