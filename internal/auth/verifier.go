// Package auth provides JWT verification helpers.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"strings"
)

// Verifier validates JWTs and extracts tenant/role claims.
// Supports modes: dev (no verify) and hmac (HS256).
type Verifier struct {
	Mode        string
	HMACSecret  []byte
	TenantClaim string
	RoleClaim   string
}

type Principal struct {
	Tenant string
	Role   string
}

func (p Principal) IsAdmin() bool { return p.Role == "admin" }

func NewVerifierFromEnv() *Verifier {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv("AUTH_MODE")))
	if mode == "" {
		mode = "dev"
	}
	v := &Verifier{
		Mode:        mode,
		HMACSecret:  []byte(os.Getenv("AUTH_HMAC_SECRET")),
		TenantClaim: os.Getenv("AUTH_TENANT_CLAIM"),
		RoleClaim:   os.Getenv("AUTH_ROLE_CLAIM"),
	}
	if v.TenantClaim == "" {
		v.TenantClaim = "tenant"
	}
	if v.RoleClaim == "" {
		v.RoleClaim = "role"
	}
	return v
}

// Verify decodes the token and, in hmac mode, checks its HS256 signature.
// Dev mode trusts the payload as-is.
func (v *Verifier) Verify(token string) (Principal, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Principal{}, errors.New("malformed token")
	}
	if v.Mode == "hmac" {
		mac := hmac.New(sha256.New, v.HMACSecret)
		mac.Write([]byte(parts[0] + "." + parts[1]))
		sig, err := base64.RawURLEncoding.DecodeString(parts[2])
		if err != nil || !hmac.Equal(mac.Sum(nil), sig) {
			return Principal{}, errors.New("bad signature")
		}
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return Principal{}, err
	}
	var claims map[string]any
	if err := json.Unmarshal(payload, &claims); err != nil {
		return Principal{}, err
	}
	p := Principal{}
	if t, ok := claims[v.TenantClaim].(string); ok {
		p.Tenant = t
	}
	if r, ok := claims[v.RoleClaim].(string); ok {
		p.Role = r
	}
	return p, nil
}
