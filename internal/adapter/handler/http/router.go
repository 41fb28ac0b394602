package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/sm8ta/patient_records/internal/config"
	"github.com/sm8ta/patient_records/internal/core/ports"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	*gin.Engine
}

func NewRouter(
	config *config.HTTP,
	tokenVerifier ports.TokenVerifier,
	gatherer prometheus.Gatherer,
	patientHandler *PatientHandler,
) (*Router, error) {
	if config.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	// CORS
	ginConfig := cors.DefaultConfig()
	ginConfig.AllowOrigins = strings.Split(config.AllowedOrigins, ",")
	ginConfig.AddAllowHeaders("Authorization")

	router := gin.New()
	router.Use(gin.Recovery(), cors.New(ginConfig))

	// Metrics
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	router.GET("/health", func(c *gin.Context) {
		newSuccessResponse(c, http.StatusOK, "ok", nil)
	})

	patients := router.Group("/patients")
	patients.Use(AuthMiddleware(tokenVerifier))
	{
		patients.GET("", patientHandler.ListPatients)
		patients.POST("", patientHandler.CreatePatient)
		patients.PUT("/:id", patientHandler.UpdatePatient)
		patients.DELETE("/:id", patientHandler.DeletePatient)
	}

	return &Router{
		Engine: router,
	}, nil
}

// Server wraps the router in an http.Server so the caller can shut it down.
func (r *Router) Server(listenAddr string) *http.Server {
	return &http.Server{
		Addr:              listenAddr,
		Handler:           r.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
