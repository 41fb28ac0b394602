package http

import (
	"github.com/sm8ta/patient_records/internal/core/domain"

	"github.com/gin-gonic/gin"
)

func getAuthPayload(ctx *gin.Context, key string) (*domain.TokenPayload, bool) {
	value, exists := ctx.Get(key)
	if !exists {
		return nil, false
	}
	payload, ok := value.(*domain.TokenPayload)
	if !ok {
		return nil, false
	}
	return payload, true
}

// requesterID names the caller in logs.
func requesterID(c *gin.Context) string {
	payload, ok := getAuthPayload(c, authorizationPayloadKey)
	if !ok {
		return ""
	}
	if payload.UserID != "" {
		return payload.UserID
	}
	return payload.ID
}
