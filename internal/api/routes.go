package api

import (
	"embed"
	"html/template"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templateFS embed.FS

// NewRouter builds the gin engine with the form pages and the JSON API
func NewRouter(handler *Handler, allowedOrigins []string, logger *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(RequestLogger(logger), gin.Recovery())
	router.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	SetupRoutes(router, handler, allowedOrigins)
	return router
}

func SetupRoutes(router *gin.Engine, handler *Handler, allowedOrigins []string) {
	router.GET("/", handler.ShowForm)
	router.POST("/predict", handler.SubmitForm)

	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowedOrigins
	}

	api := router.Group("/api")
	api.Use(cors.New(corsConfig))
	{
		api.POST("/predict", handler.Predict)
		api.GET("/localities", handler.GetLocalities)
		api.GET("/predictions", handler.GetRecentPredictions)
		api.GET("/health", handler.Health)
	}
}

// RequestLogger logs every request through logrus
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"client":  c.ClientIP(),
		})
		if c.Writer.Status() >= 500 {
			entry.Error("Request failed")
			return
		}
		entry.Info("Handled request")
	}
}
