package restapi

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// RouterOptions configures the cross-cutting parts of the router.
type RouterOptions struct {
	AllowedOrigins  []string
	SwaggerEnabled  bool
	SwaggerPath     string
	SwaggerSpecFile string
}

// SetupRouter wires middleware and routes into a new gin engine.
func SetupRouter(handler *ReportHandler, opts RouterOptions, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	corsConfig := cors.DefaultConfig()
	if len(opts.AllowedOrigins) == 0 || (len(opts.AllowedOrigins) == 1 && opts.AllowedOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = opts.AllowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader}
	corsConfig.ExposeHeaders = []string{requestIDHeader}

	router.Use(cors.New(corsConfig))
	router.Use(RequestIDMiddleware())
	router.Use(ZapLoggerMiddleware(logger))
	router.Use(RecoveryMiddleware(logger))

	router.GET("/", handler.RootHandler)
	router.GET("/healthz", handler.HealthHandler)
	router.POST("/generate-report", handler.GenerateReportHandler)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/reports", handler.GenerateReportHandler)
		v1.GET("/nfts/:contractAddress/:tokenId", handler.GetNFTInsightHandler)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if opts.SwaggerEnabled {
		path := opts.SwaggerPath
		if path == "" {
			path = "/swagger"
		}
		router.StaticFile("/docs/swagger.yaml", opts.SwaggerSpecFile)
		swaggerURL := ginSwagger.URL("/docs/swagger.yaml")
		router.GET(path+"/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, swaggerURL))
	}

	return router
}
