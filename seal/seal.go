package seal

import (
	"crypto/sha256"
	"errors"

	"github.com/gorilla/securecookie"
)

// MinSecretLen is the minimum accepted secret length in bytes.
const MinSecretLen = 32

// ErrSecretTooShort is an exported constant or variable used by the sealed codec.
var ErrSecretTooShort = errors.New("seal: secret must be at least 32 bytes")

// Sealer seals structured records into opaque, authenticated, encrypted
// strings bound to a cookie name, and reverses that transform.
//
// Sealer instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Sealer struct {
	codecs []securecookie.Codec
}

type options struct {
	maxAge  int
	rotated [][]byte
}

// Option configures a [Sealer] at construction time.
type Option func(*options)

// WithMaxAge bounds the sealed value's validity in seconds. Zero disables
// the age check entirely.
func WithMaxAge(seconds int) Option {
	return func(o *options) {
		o.maxAge = seconds
	}
}

// WithRotatedSecrets registers previous secrets that remain valid for
// unsealing. New values are always sealed with the primary secret.
func WithRotatedSecrets(secrets ...[]byte) Option {
	return func(o *options) {
		o.rotated = append(o.rotated, secrets...)
	}
}

// New creates a [Sealer] from a pre-shared secret. Two independent keys
// (HMAC-SHA256 integrity, AES-256 encryption) are derived from the secret,
// so one configured value covers both concerns.
func New(secret []byte, opts ...Option) (*Sealer, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	secrets := append([][]byte{secret}, o.rotated...)
	codecs := make([]securecookie.Codec, 0, len(secrets))
	for _, s := range secrets {
		codec, err := newCodec(s, o.maxAge)
		if err != nil {
			return nil, err
		}
		codecs = append(codecs, codec)
	}

	return &Sealer{codecs: codecs}, nil
}

// Seal encrypts and authenticates v into an opaque string bound to the
// given cookie name. A value sealed under one name will not unseal under
// another.
func (s *Sealer) Seal(name string, v any) (string, error) {
	return securecookie.EncodeMulti(name, v, s.codecs...)
}

// Unseal reverses [Sealer.Seal] into dst. It fails on any integrity or
// format violation: a tampered value, a name mismatch, a wrong secret, or
// an expired timestamp all surface as errors, never as empty results.
func (s *Sealer) Unseal(name, value string, dst any) error {
	return securecookie.DecodeMulti(name, value, dst, s.codecs...)
}

func newCodec(secret []byte, maxAge int) (*securecookie.SecureCookie, error) {
	if len(secret) < MinSecretLen {
		return nil, ErrSecretTooShort
	}

	hashKey := deriveKey(secret, "integrity")
	blockKey := deriveKey(secret, "encryption")

	sc := securecookie.New(hashKey[:], blockKey[:])
	sc.SetSerializer(securecookie.JSONEncoder{})
	sc.MaxAge(maxAge)
	return sc, nil
}

// deriveKey expands the shared secret into a labeled 32-byte subkey so the
// HMAC and AES keys are never the same bytes.
func deriveKey(secret []byte, label string) [32]byte {
	h := sha256.New()
	h.Write(secret)
	h.Write([]byte{0})
	h.Write([]byte(label))
	var out [32]byte
	h.Sum(out[:0])
	return out
}
