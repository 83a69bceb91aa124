// Package push implements push-notification delivery: JWS-signed webhook
// calls to a task's registered callback URL, the JWKS endpoint receivers use
// to verify them, and receiver-URL reachability checks performed before a
// config is accepted.
package push

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
)

// jwk is a single RFC 7517 JSON Web Key, RSA public-key flavor.
type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use,omitempty"`
	Alg string `json:"alg,omitempty"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwkSet struct {
	Keys []jwk `json:"keys"`
}

// KeySet holds the sender's RSA keypair used to sign push-notification
// deliveries, plus the pre-rendered JWKS document served to receivers.
type KeySet struct {
	private *rsa.PrivateKey
	kid     string
	jwks    []byte
}

// NewKeySet generates a fresh 2048-bit RSA keypair. kid is the SHA-256 of
// the public key's DER encoding, so a receiver can recompute and cross-check
// it independent of what the JWKS document claims.
func NewKeySet() (*KeySet, error) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("push: generate key: %w", err)
	}

	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("push: marshal public key: %w", err)
	}
	sum := sha256.Sum256(der)
	kid := base64.RawURLEncoding.EncodeToString(sum[:])

	set := jwkSet{Keys: []jwk{{
		Kty: "RSA",
		Kid: kid,
		Alg: "RS256",
		Use: "sig",
		N:   base64.RawURLEncoding.EncodeToString(priv.PublicKey.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(priv.PublicKey.E)).Bytes()),
	}}}

	jwksJSON, err := json.Marshal(set)
	if err != nil {
		return nil, fmt.Errorf("push: marshal jwks: %w", err)
	}

	return &KeySet{private: priv, kid: kid, jwks: jwksJSON}, nil
}

// JWKS returns the serialized JSON Web Key Set to serve at
// /.well-known/jwks.json.
func (k *KeySet) JWKS() []byte {
	return k.jwks
}

func (k *KeySet) KeyID() string {
	return k.kid
}
