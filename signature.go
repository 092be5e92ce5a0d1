package folio

import (
	"crypto/subtle"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2/api"
)

// DefaultSignatureTTL is how long an upload grant stays valid.
const DefaultSignatureTTL = time.Hour

// unsignedParams never take part in an upload signature.
var unsignedParams = map[string]bool{
	"file":          true,
	"cloud_name":    true,
	"resource_type": true,
	"api_key":       true,
	"signature":     true,
}

// SignParams signs params with secret the way the hosted store's Upload API
// does. Empty values and unsigned parameters are left out.
func SignParams(params map[string]string, secret string) (string, error) {
	values := url.Values{}
	for k, v := range params {
		if v == "" || unsignedParams[k] {
			continue
		}
		values.Set(k, v)
	}

	signature, err := api.SignParameters(values, secret)
	if err != nil {
		return "", fmt.Errorf("sign params: %w", err)
	}
	return signature, nil
}

// SecretStore resolves an API key to its secret.
type SecretStore interface {
	// Lookup returns the secret for apiKey, or an error wrapping
	// ErrUnauthorized when the key is unknown.
	Lookup(apiKey string) (string, error)
}

// SignatureVerifier checks signed upload parameters on the receiving side.
type SignatureVerifier struct {
	store SecretStore
	ttl   time.Duration
	skew  time.Duration
	now   func() time.Time
}

// NewSignatureVerifier creates a verifier that resolves API keys through
// store and rejects timestamps older than ttl (DefaultSignatureTTL when ttl <= 0).
func NewSignatureVerifier(store SecretStore, ttl time.Duration) *SignatureVerifier {
	if ttl <= 0 {
		ttl = DefaultSignatureTTL
	}
	return &SignatureVerifier{
		store: store,
		ttl:   ttl,
		skew:  5 * time.Minute,
		now:   time.Now,
	}
}

// WithClock replaces the verifier's time source.
func (v *SignatureVerifier) WithClock(now func() time.Time) *SignatureVerifier {
	v.now = now
	return v
}

// Verify validates the "api_key", "timestamp" and "signature" parameters
// against the remaining signed parameters. The signature is bound to the exact
// parameter set, so a grant issued for one folder fails for any other.
//
// Returns an error wrapping ErrUnauthorized when verification fails.
func (v *SignatureVerifier) Verify(params map[string]string) error {
	apiKey := params["api_key"]
	signature := params["signature"]
	timestamp := params["timestamp"]

	if apiKey == "" || signature == "" || timestamp == "" {
		return fmt.Errorf("verify signature: missing api_key, timestamp or signature: %w", ErrUnauthorized)
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("verify signature: invalid timestamp: %w", ErrUnauthorized)
	}

	issued := time.Unix(ts, 0)
	now := v.now()
	if now.Sub(issued) > v.ttl {
		return fmt.Errorf("verify signature: signature expired: %w", ErrUnauthorized)
	}
	if issued.Sub(now) > v.skew {
		return fmt.Errorf("verify signature: timestamp in the future: %w", ErrUnauthorized)
	}

	secret, err := v.store.Lookup(apiKey)
	if err != nil {
		return fmt.Errorf("verify signature: %w", err)
	}

	expected, err := SignParams(params, secret)
	if err != nil {
		return fmt.Errorf("verify signature: %w: %w", ErrUnauthorized, err)
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(signature))) != 1 {
		return fmt.Errorf("verify signature: signature mismatch: %w", ErrUnauthorized)
	}

	return nil
}
