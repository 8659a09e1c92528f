package auth

import (
	"net/http"
	"strings"

	apperrors "agrirent/pkg/errors"
	pkghttp "agrirent/pkg/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

// Claims carries the marketplace identity inside a signed token. The user
// service issues these; this side only verifies.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Verify(tokenString string) (Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, apperrors.Unauthorized("invalid or expired token")
	}

	if claims.Subject == "" {
		return Identity{}, apperrors.Unauthorized("token missing subject")
	}

	role := Role(claims.Role)
	if role != RoleFarmer && role != RoleOwner {
		return Identity{}, apperrors.Unauthorized("token carries unknown role")
	}

	return Identity{UserID: claims.Subject, Role: role}, nil
}

// FromRequest pulls and verifies the bearer token.
func (v *Verifier) FromRequest(r *http.Request) (Identity, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return Identity{}, apperrors.Unauthorized("missing Authorization header")
	}

	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return Identity{}, apperrors.Unauthorized("Authorization header must use Bearer scheme")
	}

	return v.Verify(strings.TrimSpace(tokenString))
}

// Protect guards a route: the wrapped handle only runs with a verified
// identity in the request context.
func (v *Verifier) Protect(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		identity, err := v.FromRequest(r)
		if err != nil {
			_ = pkghttp.WriteError(w, err)
			return
		}

		next(w, r.WithContext(WithIdentity(r.Context(), identity)), ps)
	}
}

// ProtectRole additionally requires a specific role.
func (v *Verifier) ProtectRole(role Role, next httprouter.Handle) httprouter.Handle {
	return v.Protect(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		identity, _ := IdentityFromContext(r.Context())
		if identity.Role != role {
			_ = pkghttp.WriteError(w, apperrors.Forbidden("insufficient role for this operation"))
			return
		}

		next(w, r, ps)
	})
}

// RateLimitKey buckets requests by verified user id. Unauthenticated
// requests return "" and are bucketed elsewhere.
func (v *Verifier) RateLimitKey(r *http.Request) string {
	identity, err := v.FromRequest(r)
	if err != nil {
		return ""
	}
	return identity.UserID
}
