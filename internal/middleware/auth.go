package middleware

import (
	"net/http"
	"strings"

	"farmacuadra/internal/apierror"
	"farmacuadra/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const ClaimsKey = "claims"

// JWTClaims are the custom claims the identity service embeds in every
// access token. Rol: administrador | superadministrador.
type JWTClaims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Nombre  string `json:"nombre"`
	Rol     string `json:"rol"`
	LocalID *int64 `json:"local_id"`
	jwt.RegisteredClaims
}

// JWTAuth validates the Bearer token on every protected route.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticacion requerida"))
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token invalido o expirado"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireRole rejects requests whose JWT role is not in the allowed list.
// Defense-in-depth: the services re-check roles on every transition.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		claims, ok := c.MustGet(ClaimsKey).(*JWTClaims)
		if !ok || !allowed[claims.Rol] {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Permisos insuficientes"))
			return
		}
		c.Next()
	}
}

// GetClaims retrieves typed claims from the Gin context.
func GetClaims(c *gin.Context) *JWTClaims {
	claims, _ := c.MustGet(ClaimsKey).(*JWTClaims)
	return claims
}

// GetActor converts the request claims into the domain actor.
func GetActor(c *gin.Context) model.Actor {
	claims := GetClaims(c)
	if claims == nil {
		return model.Actor{}
	}
	return model.Actor{
		UID:    claims.UserID,
		Email:  claims.Email,
		Nombre: claims.Nombre,
		Rol:    claims.Rol,
	}
}
