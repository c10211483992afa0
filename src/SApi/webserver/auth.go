package webserver

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Auth issues short-lived JWTs to trusted front ends. The caller proves
// itself with the shared API key and names the Discord user it acts for.
type Auth struct {
	secret []byte
	apiKey string
}

func NewAuth(secret []byte, apiKey string) Auth {
	return Auth{secret: secret, apiKey: apiKey}
}

func (a Auth) Token(c *gin.Context) {
	var req struct {
		Key     string `json:"key" binding:"required"`
		UserID  string `json:"userId" binding:"required,min=5,max=32"`
		Manager bool   `json:"manager"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	if a.apiKey == "" || req.Key != a.apiKey {
		log.Printf("Auth rejected for %s from IP %s", req.UserID, c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"err": "bad api key"})
		return
	}

	token, err := issueJWT(req.UserID, req.Manager, a.secret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func issueJWT(userID string, manager bool, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid": userID,
		"mgr": manager,
		"jti": uuid.NewString(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	return token.SignedString(secret)
}

func JWTMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		tok, err := jwt.Parse(h[7:], func(t *jwt.Token) (interface{}, error) { return secret, nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !tok.Valid {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		claims := tok.Claims.(jwt.MapClaims)
		c.Set("uid", claims["uid"])
		if mgr, ok := claims["mgr"].(bool); ok {
			c.Set("mgr", mgr)
		}
		c.Next()
	}
}

func requestUserID(c *gin.Context) string {
	if uid, ok := c.Get("uid"); ok {
		if s, ok := uid.(string); ok {
			return s
		}
	}
	return ""
}

func isManager(c *gin.Context) bool {
	return c.GetBool("mgr")
}
