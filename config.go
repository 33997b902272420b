package sealsession

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/marcwael/sealsession/seal"
	"github.com/marcwael/sealsession/session"
)

// Config defines a public type used by sealsession APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Cookie  CookieConfig
	Store   StoreConfig
	Refresh RefreshConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
COOKIE CONFIG
====================================
*/

// CookieConfig defines a public type used by sealsession APIs.
//
// CookieConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CookieConfig struct {
	// Secret seals and unseals the cookie. Minimum 32 bytes.
	Secret []byte
	// RotatedSecrets stay valid for unsealing after a secret rotation.
	RotatedSecrets [][]byte

	Name     string
	Path     string
	Lifetime time.Duration
	Domain   string
	SameSite http.SameSite
	Secure   bool
	HTTPOnly bool
}

/*
====================================
STORE FLAGS
====================================
*/

// StoreConfig selects which token kinds are written into the sealed
// cookie. A disabled kind never leaves the process, whatever the live
// session carries.
type StoreConfig struct {
	IDToken      bool
	AccessToken  bool
	RefreshToken bool
}

func (c StoreConfig) flags() session.StoreFlags {
	return session.StoreFlags{
		IDToken:      c.IDToken,
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
	}
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshConfig defines a public type used by sealsession APIs.
//
// RefreshConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RefreshConfig struct {
	// Skew is the clock-skew margin for the staleness check: a token is
	// refreshed Skew before its true expiry.
	Skew time.Duration
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by sealsession APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by sealsession APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULTS
====================================
*/

// DefaultConfig describes the defaultconfig operation and its observable behavior.
//
// DefaultConfig may return an error when input validation, dependency calls, or security checks fail.
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Cookie: CookieConfig{
			Name:     "__Host-session",
			Path:     "/",
			Lifetime: 7 * 24 * time.Hour,
			SameSite: http.SameSiteLaxMode,
			Secure:   true,
			HTTPOnly: true,
		},
		Store: StoreConfig{
			IDToken:      true,
			AccessToken:  true,
			RefreshToken: true,
		},
		Refresh: RefreshConfig{
			Skew: session.DefaultSkew,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Cookie.Secret = cloneBytes(cfg.Cookie.Secret)
	if len(cfg.Cookie.RotatedSecrets) > 0 {
		out.Cookie.RotatedSecrets = make([][]byte, len(cfg.Cookie.RotatedSecrets))
		for i, s := range cfg.Cookie.RotatedSecrets {
			out.Cookie.RotatedSecrets[i] = cloneBytes(s)
		}
	}
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Cookie
	if len(c.Cookie.Secret) < seal.MinSecretLen {
		return errors.New("Cookie Secret must be at least 32 bytes")
	}
	for _, s := range c.Cookie.RotatedSecrets {
		if len(s) < seal.MinSecretLen {
			return errors.New("Cookie RotatedSecrets entries must be at least 32 bytes")
		}
	}

	if c.Cookie.Name == "" {
		return errors.New("Cookie Name is required")
	}
	if strings.ContainsAny(c.Cookie.Name, " ;,=") {
		return errors.New("Cookie Name contains invalid characters")
	}

	if c.Cookie.Lifetime <= 0 {
		return errors.New("Cookie Lifetime must be > 0")
	}

	// Prefix rules per RFC 6265bis: __Host- cookies must be secure,
	// host-only, and rooted at /.
	if strings.HasPrefix(c.Cookie.Name, "__Host-") {
		if !c.Cookie.Secure {
			return errors.New("__Host- cookie requires Secure")
		}
		if c.Cookie.Domain != "" {
			return errors.New("__Host- cookie must not set Domain")
		}
		if c.Cookie.Path != "/" {
			return errors.New("__Host- cookie requires Path \"/\"")
		}
	}
	if strings.HasPrefix(c.Cookie.Name, "__Secure-") && !c.Cookie.Secure {
		return errors.New("__Secure- cookie requires Secure")
	}

	switch c.Cookie.SameSite {
	case http.SameSiteDefaultMode, http.SameSiteLaxMode, http.SameSiteStrictMode:
	case http.SameSiteNoneMode:
		if !c.Cookie.Secure {
			return errors.New("SameSite=None requires Secure")
		}
	default:
		return errors.New("Cookie SameSite is invalid")
	}

	// Refresh
	if c.Refresh.Skew < 0 {
		return errors.New("Refresh Skew must be >= 0")
	}
	if c.Refresh.Skew >= c.Cookie.Lifetime {
		return errors.New("Refresh Skew must be smaller than Cookie Lifetime")
	}

	// Audit
	if c.Audit.Enabled {
		if c.Audit.BufferSize <= 0 {
			return errors.New("Audit BufferSize must be > 0 when audit is enabled")
		}
	}

	return nil
}
