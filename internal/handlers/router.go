package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/justsurfingit/lead-labeler/internal/auth"
	"github.com/justsurfingit/lead-labeler/internal/services"
)

// Deps is everything the HTTP layer needs.
type Deps struct {
	Leads          *services.LeadService
	Models         *services.ModelService
	Users          *services.UserService
	Tokens         *auth.TokenManager
	AllowedOrigins []string
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = maxModelSize
	r.Use(gin.Recovery(), RequestID(), AccessLog())
	r.Use(cors.New(corsConfig(d.AllowedOrigins)))

	leadHandler := NewLeadHandler(d.Leads)
	modelHandler := NewModelHandler(d.Models)
	userHandler := NewUserHandler(d.Users)

	r.GET("/health", HealthCheck)

	user := r.Group("/user")
	{
		user.POST("/signup", userHandler.Signup)
		user.POST("/login", userHandler.Login)
	}

	api := r.Group("/", auth.RequireBearer(d.Tokens))
	{
		api.GET("/data_fetch", leadHandler.FetchData)
		api.POST("/label_fetch", leadHandler.LabelLead)

		api.POST("/model_upload", modelHandler.UploadModel)
		api.DELETE("/model_delete", modelHandler.DeleteModel)
		api.GET("/models", modelHandler.ListModels)
	}
	return r
}

func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", RequestIDHeader}
	config.ExposeHeaders = []string{RequestIDHeader}
	return config
}
