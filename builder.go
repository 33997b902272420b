package sealsession

import (
	"errors"
	"fmt"
	"time"

	"github.com/marcwael/sealsession/seal"
)

// Builder defines a public type used by sealsession APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	cfg       Config
	codec     Codec
	transport CookieTransport
	factory   ClientFactory
	sink      AuditSink
	now       func() time.Time
	built     bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		cfg: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cloneConfig(cfg)
	return b
}

// WithCookieSecret describes the withcookiesecret operation and its observable behavior.
//
// WithCookieSecret may return an error when input validation, dependency calls, or security checks fail.
// WithCookieSecret does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithCookieSecret(secret []byte, rotated ...[]byte) *Builder {
	b.cfg.Cookie.Secret = cloneBytes(secret)
	b.cfg.Cookie.RotatedSecrets = nil
	for _, s := range rotated {
		b.cfg.Cookie.RotatedSecrets = append(b.cfg.Cookie.RotatedSecrets, cloneBytes(s))
	}
	return b
}

// WithCodec describes the withcodec operation and its observable behavior.
//
// WithCodec may return an error when input validation, dependency calls, or security checks fail.
// WithCodec does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithCodec(codec Codec) *Builder {
	b.codec = codec
	return b
}

// WithTransport describes the withtransport operation and its observable behavior.
//
// WithTransport may return an error when input validation, dependency calls, or security checks fail.
// WithTransport does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithTransport(transport CookieTransport) *Builder {
	b.transport = transport
	return b
}

// WithClientFactory describes the withclientfactory operation and its observable behavior.
//
// WithClientFactory may return an error when input validation, dependency calls, or security checks fail.
// WithClientFactory does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithClientFactory(factory ClientFactory) *Builder {
	b.factory = factory
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink may return an error when input validation, dependency calls, or security checks fail.
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.sink = sink
	if sink != nil {
		b.cfg.Audit.Enabled = true
	}
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.cfg.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms may return an error when input validation, dependency calls, or security checks fail.
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.cfg.Metrics.EnableLatencyHistograms = enabled
	return b
}

// withNow overrides the store clock. Test hook.
func (b *Builder) withNow(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Store, error) {
	if b.built {
		return nil, errors.New("sealsession: builder already consumed")
	}
	b.built = true

	cfg := cloneConfig(b.cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if b.factory == nil {
		return nil, errors.New("sealsession: client factory is required")
	}

	codec := b.codec
	if codec == nil {
		var err error
		codec, err = seal.New(cfg.Cookie.Secret,
			seal.WithMaxAge(int(cfg.Cookie.Lifetime.Seconds())),
			seal.WithRotatedSecrets(cfg.Cookie.RotatedSecrets...),
		)
		if err != nil {
			return nil, fmt.Errorf("build codec: %w", err)
		}
	}

	transport := b.transport
	if transport == nil {
		transport = httpTransport{}
	}

	now := b.now
	if now == nil {
		now = time.Now
	}

	return &Store{
		config:    cfg,
		flags:     cfg.Store.flags(),
		codec:     codec,
		transport: transport,
		factory:   b.factory,
		audit:     newAuditDispatcher(cfg.Audit, b.sink),
		metrics:   NewMetrics(cfg.Metrics),
		now:       now,
	}, nil
}
