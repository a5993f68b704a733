package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	tok := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"sub": sub,
		"iat": time.Now().Unix(),
		"exp": exp.Unix(),
	})
	signed, err := tok.SignedString(testSecret)
	require.NoError(t, err)
	return signed
}

func authRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/whoami", Auth(Options{Secret: testSecret}), func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})
	return r
}

func doGet(r *gin.Engine, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthAcceptsValidToken(t *testing.T) {
	r := authRouter()
	token := signToken(t, "user-1", time.Now().Add(time.Hour))

	w := doGet(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())
}

func TestAuthRejects(t *testing.T) {
	r := authRouter()

	cases := []struct {
		name  string
		authz string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not.a.jwt"},
		{"expired", "Bearer " + signToken(t, "user-1", time.Now().Add(-time.Hour))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doGet(r, tc.authz)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthRejectsWrongAlgorithm(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/whoami", Auth(Options{Secret: testSecret, Alg: "HS512"}), func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})

	// token signed HS256 against a verifier expecting HS512
	w := doGet(r, "Bearer "+signToken(t, "user-1", time.Now().Add(time.Hour)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
