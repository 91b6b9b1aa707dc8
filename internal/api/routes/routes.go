package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/jobbo/internal/api/handlers"
	"github.com/yoockh/jobbo/internal/api/middleware"
	"github.com/yoockh/jobbo/internal/security"
)

// auth endpoints: attempts per client IP and route per window
const (
	authRateLimit  = 10
	authRateWindow = time.Minute
)

type Deps struct {
	Log         *logrus.Logger
	Tokens      *security.TokenIssuer
	Revocations middleware.RevocationChecker
	Limiter     middleware.Limiter
	CORSOrigins []string

	Jobs     *handlers.JobsHandler
	Auth     *handlers.AuthHandler
	SavedJob *handlers.SavedJobHandler
	Profile  *handlers.ProfileHandler
	WS       *handlers.WSHandler
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", "X-Request-Id")
	cfg.ExposeHeaders = []string{"X-Request-Id"}
	return cfg
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.Use(cors.New(corsConfig(d.CORSOrigins)))
	if d.Log != nil {
		r.Use(middleware.RequestLogger(d.Log))
	}

	api := r.Group("/api")
	api.GET("/health", d.Jobs.Health)
	api.GET("/jobs", d.Jobs.Search)

	limited := middleware.RateLimit(d.Limiter, authRateLimit, authRateWindow)
	jwt := middleware.JWTAuth(d.Tokens, d.Revocations)

	auth := api.Group("/auth")
	auth.POST("/register", limited, d.Auth.Register)
	auth.POST("/login", limited, d.Auth.Login)
	auth.POST("/google", limited, d.Auth.Google)
	auth.POST("/password-reset", limited, d.Auth.RequestReset)
	auth.POST("/password-reset/confirm", limited, d.Auth.ConfirmReset)
	auth.POST("/logout", jwt, d.Auth.Logout)
	auth.GET("/me", jwt, d.Auth.Me)
	auth.PATCH("/me", jwt, d.Auth.UpdateMe)

	saved := api.Group("/saved-jobs", jwt)
	saved.GET("", d.SavedJob.List)
	saved.POST("/toggle", d.SavedJob.Toggle)
	saved.GET("/:job_id", d.SavedJob.Status)
	saved.PUT("/:job_id", d.SavedJob.Put)
	saved.DELETE("/:job_id", d.SavedJob.Delete)

	profile := api.Group("/profile", jwt)
	profile.GET("", d.Profile.Get)
	profile.PUT("", d.Profile.Put)

	api.GET("/ws", jwt, d.WS.Live)
}
