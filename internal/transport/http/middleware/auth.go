package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"go-gin-gorm-accounts/internal/core/auth"
	"go-gin-gorm-accounts/internal/domain"
	resp "go-gin-gorm-accounts/internal/transport/http/response"
)

const (
	KeyPrincipal = "principal"
	KeyParamID   = "paramID"
)

// Verifier is satisfied by *auth.TokenService.
type Verifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Principal is the caller resolved from a bearer access token.
type Principal struct {
	ID   uint
	Role domain.Role
}

func (p Principal) IsAdmin() bool { return p.Role == domain.RoleAdmin }

func PrincipalFrom(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(KeyPrincipal)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

// ParamIDFrom returns the id stored by ParamID, or 0.
func ParamIDFrom(c *gin.Context) uint {
	v, _ := c.Get(KeyParamID)
	id, _ := v.(uint)
	return id
}

// IsAuth requires "Authorization: Bearer <access token>". Refresh tokens are
// refused here so they can only ever be used to mint new pairs.
func IsAuth(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		tok = strings.TrimSpace(tok)
		if !ok || tok == "" {
			resp.Abort(c, http.StatusUnauthorized, resp.CodeInvalidToken, "Missing bearer token")
			return
		}
		claims, err := v.Verify(tok)
		if err != nil {
			_ = c.Error(err)
			resp.Abort(c, http.StatusUnauthorized, resp.CodeInvalidToken, "")
			return
		}
		if claims.IsRefresh() {
			resp.Abort(c, http.StatusUnauthorized, resp.CodeInvalidToken, "Refresh token cannot be used for API calls")
			return
		}
		id, err := claims.UserID()
		if err != nil {
			resp.Abort(c, http.StatusUnauthorized, resp.CodeInvalidToken, "")
			return
		}
		c.Set(KeyPrincipal, Principal{ID: id, Role: claims.Role})
		c.Next()
	}
}

// HasRole must run after IsAuth.
func HasRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			resp.Abort(c, http.StatusUnauthorized, resp.CodeInvalidToken, "")
			return
		}
		if !slices.Contains(roles, p.Role) {
			resp.Abort(c, http.StatusForbidden, resp.CodeForbidden, "")
			return
		}
		c.Next()
	}
}

// ParamID parses a positive integer path parameter into KeyParamID.
func ParamID(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param(name), 10, 64)
		if err != nil || id == 0 || uint64(uint(id)) != id {
			c.AbortWithStatusJSON(http.StatusBadRequest, resp.Validation([]resp.FieldError{{
				Field:   name,
				Rule:    "gt",
				Param:   "0",
				Message: "must be a positive integer",
			}}))
			return
		}
		c.Set(KeyParamID, uint(id))
		c.Next()
	}
}

// IsSelfOrAdmin must run after IsAuth and ParamID.
func IsSelfOrAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			resp.Abort(c, http.StatusUnauthorized, resp.CodeInvalidToken, "")
			return
		}
		if !p.IsAdmin() && ParamIDFrom(c) != p.ID {
			resp.Abort(c, http.StatusForbidden, resp.CodeForbidden, "")
			return
		}
		c.Next()
	}
}
