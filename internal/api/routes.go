package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"careernavigator/internal/academics"
	"careernavigator/internal/api/middleware"
	"careernavigator/internal/auth"
	"careernavigator/internal/autosave"
	"careernavigator/internal/config"
	"careernavigator/internal/forum"
	"careernavigator/internal/profile"
	"careernavigator/internal/storage"
)

// Dependencies 聚合路由注册所需的全部依赖，显式传入，无包级单例。
type Dependencies struct {
	DB          *gorm.DB
	Config      *config.Config
	AuthService *auth.AuthService
	Redis       redis.UniversalClient
	AsynqClient *asynq.Client
	Storage     *storage.Client
	Autosave    *autosave.Controller
	Logger      *slog.Logger
}

// RegisterRoutes 注册 API 路由，不包含 /api 前缀。
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	aggregator := profile.NewAggregator(deps.DB, deps.Logger)
	semesterService := academics.NewService(deps.DB)
	coordinator := forum.NewCoordinator(deps.DB, forum.NewRedisPublisher(deps.Redis, deps.Logger), deps.Logger)

	authHandler := NewAuthHandler(deps.DB, deps.AuthService, deps.Redis, deps.Logger,
		deps.Config.Auth.LoginRatePerHr, deps.Config.Auth.CookieDomain)
	profileHandler := NewProfileHandler(aggregator)
	childrenHandler := NewChildrenHandler(deps.DB)
	academicsHandler := NewAcademicsHandler(semesterService)
	applicationHandler := NewApplicationHandler(deps.DB)
	resumeHandler := NewResumeHandler(deps.DB, deps.Storage, deps.AsynqClient, deps.Autosave, deps.Logger)
	forumHandler := NewForumHandler(deps.DB, coordinator, deps.AsynqClient)
	preferencesHandler := NewPreferencesHandler(deps.DB)
	assetHandler := NewAssetHandler(deps.DB, deps.Storage, deps.Logger, deps.Config.Upload)
	wsHandler := NewWsHandler(deps.Redis, deps.AuthService, deps.Logger, deps.Config.API.CORSOrigins)

	authMiddleware := middleware.AuthMiddleware(deps.AuthService)

	v1 := router.Group("/v1")
	{
		v1.GET("/ws", wsHandler.HandleConnection)

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/logout", authHandler.Logout)
			authGroup.POST("/change-password", authMiddleware, authHandler.ChangePassword)
		}

		profileGroup := v1.Group("/profile")
		profileGroup.Use(authMiddleware)
		{
			profileGroup.GET("", profileHandler.GetProfile)
			profileGroup.PATCH("", profileHandler.UpdateProfile)

			profileGroup.POST("/skills", childrenHandler.CreateSkill)
			profileGroup.PUT("/skills/:id", childrenHandler.UpdateSkill)
			profileGroup.DELETE("/skills/:id", childrenHandler.DeleteSkill)

			profileGroup.POST("/courses", childrenHandler.CreateCourse)
			profileGroup.PUT("/courses/:id", childrenHandler.UpdateCourse)
			profileGroup.DELETE("/courses/:id", childrenHandler.DeleteCourse)

			profileGroup.POST("/projects", childrenHandler.CreateProject)
			profileGroup.PUT("/projects/:id", childrenHandler.UpdateProject)
			profileGroup.DELETE("/projects/:id", childrenHandler.DeleteProject)

			profileGroup.POST("/certifications", childrenHandler.CreateCertification)
			profileGroup.PUT("/certifications/:id", childrenHandler.UpdateCertification)
			profileGroup.DELETE("/certifications/:id", childrenHandler.DeleteCertification)

			profileGroup.POST("/avatar", assetHandler.UploadAvatar)
			profileGroup.GET("/avatar", assetHandler.GetAvatarURL)
		}

		academicsGroup := v1.Group("/academics")
		academicsGroup.Use(authMiddleware)
		{
			academicsGroup.GET("/semesters", academicsHandler.ListSemesters)
			academicsGroup.POST("/semesters", academicsHandler.AddSemester)
			academicsGroup.DELETE("/semesters/:id", academicsHandler.DeleteSemester)
		}

		applicationGroup := v1.Group("/applications")
		applicationGroup.Use(authMiddleware)
		{
			applicationGroup.GET("", applicationHandler.ListApplications)
			applicationGroup.POST("", applicationHandler.CreateApplication)
			applicationGroup.PUT("/:id", applicationHandler.UpdateApplication)
			applicationGroup.DELETE("/:id", applicationHandler.DeleteApplication)
		}

		resumeGroup := v1.Group("/resume")
		resumeGroup.Use(authMiddleware)
		{
			resumeGroup.GET("", resumeHandler.GetResume)
			resumeGroup.PUT("", resumeHandler.SaveResume)
			resumeGroup.PUT("/draft", resumeHandler.SaveDraft)
			resumeGroup.GET("/draft/status", resumeHandler.DraftStatus)
			resumeGroup.POST("/export", resumeHandler.ExportResume)
			resumeGroup.GET("/download-link", resumeHandler.DownloadLink)
		}

		forumGroup := v1.Group("/forum")
		forumGroup.Use(authMiddleware)
		{
			forumGroup.GET("/posts", forumHandler.ListPosts)
			forumGroup.POST("/posts", forumHandler.CreatePost)
			forumGroup.GET("/posts/:id", forumHandler.GetPost)
			forumGroup.POST("/posts/:id/replies", forumHandler.CreateReply)
			forumGroup.POST("/posts/:id/replies/:replyID/accept", forumHandler.AcceptAnswer)
		}

		preferencesGroup := v1.Group("/preferences")
		preferencesGroup.Use(authMiddleware)
		{
			preferencesGroup.GET("", preferencesHandler.GetPreferences)
			preferencesGroup.PUT("", preferencesHandler.SavePreferences)
		}
	}
}
