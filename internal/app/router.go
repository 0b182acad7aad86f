package app

import (
	"ielts_prep_backend/docs"
	"ielts_prep_backend/internal/config"
	"ielts_prep_backend/internal/middleware"
	"ielts_prep_backend/internal/model"
	"ielts_prep_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.GET("/tests", c.test.List)
		// detail is public but the access verdict reflects the caller when
		// a token is supplied
		public.GET("/tests/:id", middleware.TryAuthMiddleware(cfg), c.test.Get)
	}

	student := router.Group("/api")
	student.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		student.GET("/profile", c.auth.Profile)
		student.GET("/tests/:id/access", c.test.Access)

		session := student.Group("/tests/:id/session")
		{
			session.POST("/start", c.session.Start)
			session.POST("/sections/:sectionId/pick", c.session.Pick)
			session.POST("/sections/:sectionId/enter", c.session.Enter)
			session.PUT("/answers", c.session.SaveAnswer)
			session.POST("/sections/:sectionId/finish", c.session.Finish)
			session.POST("/sections/:sectionId/exit", c.session.Exit)
			session.GET("/timer", c.session.Timer)
			session.POST("/submit", c.session.Submit)
		}

		student.GET("/results", c.result.List)
		student.GET("/results/:id", c.result.Get)
	}

	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/tests", c.admin.CreateTest)
		admin.PUT("/tests/:id", c.admin.UpdateTest)
		admin.DELETE("/tests/:id", c.admin.DeleteTest)
		admin.POST("/tests/:id/sections", c.admin.CreateSection)

		admin.PUT("/sections/:sectionId", c.admin.UpdateSection)
		admin.DELETE("/sections/:sectionId", c.admin.DeleteSection)
		admin.POST("/sections/:sectionId/parts", c.admin.CreatePart)
		admin.GET("/sections/:sectionId/questions", c.admin.ListQuestions)
		admin.POST("/sections/:sectionId/questions", c.admin.CreateQuestion)

		admin.PUT("/parts/:partId", c.admin.UpdatePart)
		admin.DELETE("/parts/:partId", c.admin.DeletePart)
		admin.POST("/parts/:partId/audio", c.admin.UploadPartAudio)
		admin.POST("/parts/:partId/pdf", c.admin.UploadPartPdf)

		admin.PUT("/questions/:questionId", c.admin.UpdateQuestion)
		admin.DELETE("/questions/:questionId", c.admin.DeleteQuestion)

		admin.POST("/purchases", c.admin.GrantAccess)
	}
}
