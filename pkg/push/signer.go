package push

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// deliveryClaims are the JWS claims signed over every push-notification
// delivery: iat proves freshness, request_body_sha256 binds the signature
// to the exact payload being delivered so a receiver can detect tampering.
type deliveryClaims struct {
	jwt.RegisteredClaims
	RequestBodySHA256 string `json:"request_body_sha256"`
}

// SignDelivery produces a compact RS256 JWS over body, with the sender's kid
// in the header so a receiver can select the right key from the JWKS.
func (k *KeySet) SignDelivery(body []byte) (string, error) {
	sum := sha256.Sum256(body)

	claims := deliveryClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now().UTC()),
		},
		RequestBodySHA256: hex.EncodeToString(sum[:]),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = k.kid

	return token.SignedString(k.private)
}
