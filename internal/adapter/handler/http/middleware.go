package http

import (
	"net/http"
	"strings"

	"github.com/sm8ta/patient_records/internal/core/ports"

	"github.com/gin-gonic/gin"
)

const (
	authorizationHeaderKey  = "authorization"
	authorizationType       = "bearer"
	authorizationPayloadKey = "authorization_payload"
)

func AuthMiddleware(token ports.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authorizationHeader := c.GetHeader(authorizationHeaderKey)
		if authorizationHeader == "" {
			newErrorResponse(c, http.StatusUnauthorized, "Auth header required")
			return
		}

		fields := strings.Fields(authorizationHeader)
		if len(fields) != 2 {
			newErrorResponse(c, http.StatusUnauthorized, "Auth fields required")
			return
		}

		currentAuthorizationType := strings.ToLower(fields[0])
		if currentAuthorizationType != authorizationType {
			newErrorResponse(c, http.StatusUnauthorized, "Not authorized")
			return
		}

		accessToken := fields[1]
		payload, err := token.VerifyToken(accessToken)
		if err != nil {
			newErrorResponse(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		c.Set(authorizationPayloadKey, &payload)
		c.Next()
	}
}
