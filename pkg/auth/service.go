package auth

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// Service handles authentication and token management
type Service struct {
	mu            sync.RWMutex
	tokens        map[string]*TokenInfo
	refreshTokens map[string]string
	rateLimiter   *RateLimiter
	signingKey    []byte
}

// TokenInfo represents a JWT token and its metadata
type TokenInfo struct {
	Token        string
	ExpiresAt    time.Time
	RefreshToken string
	Scheme       string
}

// NewService creates a new authentication service with a generated signing
// key. Use NewServiceFromConfig to load a persistent key instead.
func NewService() *Service {
	return &Service{
		tokens:        make(map[string]*TokenInfo),
		refreshTokens: make(map[string]string),
		rateLimiter:   NewRateLimiter(100, time.Minute), // 100 requests per minute
		signingKey:    []byte(uuid.NewString()),
	}
}

// NewServiceFromConfig builds a Service whose signing key and rate limit
// come from the viper config tree rooted at auth.*, following the card's
// config-driven construction pattern.
func NewServiceFromConfig() *Service {
	key := viper.GetString("auth.signingKey")
	if key == "" {
		key = uuid.NewString()
	}

	rate := viper.GetInt64("auth.rateLimit.requests")
	if rate <= 0 {
		rate = 100
	}
	interval := viper.GetDuration("auth.rateLimit.interval")
	if interval <= 0 {
		interval = time.Minute
	}

	return &Service{
		tokens:        make(map[string]*TokenInfo),
		refreshTokens: make(map[string]string),
		rateLimiter:   NewRateLimiter(rate, interval),
		signingKey:    []byte(key),
	}
}

// Middleware enforces bearer-token authentication on every request except
// the protocol's well-known discovery documents and the /health check,
// which must stay reachable without credentials.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isDiscoveryPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		if err := s.AuthenticateRequest(r); err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isDiscoveryPath(path string) bool {
	switch path {
	case "/.well-known/agent.json", "/.well-known/jwks.json", "/health":
		return true
	default:
		return false
	}
}

func (s *Service) getSigningKey(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return s.signingKey, nil
}

// AuthenticateRequest authenticates an HTTP request
func (s *Service) AuthenticateRequest(req *http.Request) error {
	if !s.rateLimiter.Allow() {
		return fmt.Errorf("rate limit exceeded")
	}

	authHeader := req.Header.Get("Authorization")
	if authHeader == "" {
		return fmt.Errorf("missing authorization header")
	}

	// Extract token from header
	tokenStr := authHeader
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		tokenStr = authHeader[7:]
	}

	// Validate token
	token, err := jwt.Parse(tokenStr, s.getSigningKey)
	if err != nil {
		return fmt.Errorf("invalid token: %w", err)
	}

	// Check token expiration
	if !token.Valid {
		return fmt.Errorf("token expired")
	}

	return nil
}

// GenerateToken generates a new JWT token
func (s *Service) GenerateToken(scheme string, claims jwt.MapClaims) (*TokenInfo, error) {
	now := time.Now()
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = now.Add(time.Hour).Unix()
	}
	if _, ok := claims["iat"]; !ok {
		claims["iat"] = now.Unix()
	}
	if _, ok := claims["jti"]; !ok {
		claims["jti"] = uuid.NewString()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString(s.signingKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	// Generate refresh token
	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": claims["sub"],
		"exp": time.Now().Add(24 * time.Hour).Unix(),
		"iat": now.Unix(),
		"jti": uuid.NewString(),
	})
	refreshTokenStr, err := refreshToken.SignedString(s.signingKey)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	tokenInfo := &TokenInfo{
		Token:        tokenStr,
		ExpiresAt:    time.Now().Add(time.Hour),
		RefreshToken: refreshTokenStr,
		Scheme:       scheme,
	}

	s.mu.Lock()
	s.tokens[tokenStr] = tokenInfo
	s.refreshTokens[refreshTokenStr] = tokenStr
	s.mu.Unlock()

	return tokenInfo, nil
}

// RefreshToken refreshes an expired token using a refresh token
func (s *Service) RefreshToken(refreshToken string) (*TokenInfo, error) {
	s.mu.RLock()
	oldToken, exists := s.refreshTokens[refreshToken]
	s.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("invalid refresh token")
	}

	// Parse the old token to get claims; its signature is still checked but
	// its expiry is not, since refreshing an expired token is the point.
	token, err := jwt.Parse(oldToken, s.getSigningKey, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, fmt.Errorf("failed to parse old token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	// Remove old timing claims so new values are generated
	delete(claims, "exp")
	delete(claims, "iat")
	delete(claims, "jti")

	// Generate new token with updated claims
	newTokenInfo, newErr := s.GenerateToken("Bearer", claims)
	if newErr != nil {
		return nil, fmt.Errorf("failed to generate new token during refresh: %w", newErr)
	}

	// Rotate the refresh token so it can't be replayed.
	s.mu.Lock()
	delete(s.refreshTokens, refreshToken)
	delete(s.tokens, oldToken)
	s.mu.Unlock()

	return newTokenInfo, nil
}

// RevokeToken revokes a token and its associated refresh token
func (s *Service) RevokeToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokenInfo, exists := s.tokens[token]
	if !exists {
		return fmt.Errorf("token not found")
	}

	delete(s.tokens, token)
	delete(s.refreshTokens, tokenInfo.RefreshToken)
	return nil
}

// GetTokenInfo retrieves token information
func (s *Service) GetTokenInfo(token string) (*TokenInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tokenInfo, exists := s.tokens[token]
	if !exists {
		return nil, fmt.Errorf("token not found")
	}

	return tokenInfo, nil
}
