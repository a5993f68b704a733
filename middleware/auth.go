package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	jwtlib "github.com/golang-jwt/jwt/v5"
)

// ContextUserID is the gin context key the authenticated user id is stored
// under.
const ContextUserID = "userId"

// Options controls token verification.
type Options struct {
	Secret []byte
	Alg    string // HS256/HS384/HS512, default HS256
}

func signingMethod(alg string) (jwtlib.SigningMethod, error) {
	switch strings.ToUpper(alg) {
	case "", "HS256":
		return jwtlib.SigningMethodHS256, nil
	case "HS384":
		return jwtlib.SigningMethodHS384, nil
	case "HS512":
		return jwtlib.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("unsupported alg: %s", alg)
	}
}

// Auth verifies a Bearer token and puts the subject user id into the
// context. Verification only; issuance lives with the account service.
func Auth(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not Authorized"})
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		method, err := signingMethod(opts.Alg)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not Authorized"})
			return
		}

		tok, err := jwtlib.Parse(raw, func(t *jwtlib.Token) (interface{}, error) {
			if t.Method.Alg() != method.Alg() {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return opts.Secret, nil
		})
		if err != nil || !tok.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not Authorized"})
			return
		}

		sub, err := tok.Claims.GetSubject()
		if err != nil || sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not Authorized"})
			return
		}

		c.Set(ContextUserID, sub)
		c.Next()
	}
}

// UserID extracts the authenticated user id placed by Auth.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
