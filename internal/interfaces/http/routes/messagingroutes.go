package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/kesher-io/kesher/internal/interfaces/http/handlers/messaging"
)

// MessagingRouteConfig holds dependencies for templates, sequences and the social inbox.
type MessagingRouteConfig struct {
	TemplateHandler *messaging.TemplateHandler
	SequenceHandler *messaging.SequenceHandler
	SocialHandler   *messaging.SocialHandler
}

func SetupMessagingRoutes(admin *gin.RouterGroup, cfg *MessagingRouteConfig) {
	templates := admin.Group("/templates")
	{
		templates.GET("", cfg.TemplateHandler.List)
		templates.POST("", cfg.TemplateHandler.Create)
		templates.GET("/:id", cfg.TemplateHandler.Get)
		templates.PUT("/:id", cfg.TemplateHandler.Update)
		templates.DELETE("/:id", cfg.TemplateHandler.Delete)
		templates.POST("/:id/preview", cfg.TemplateHandler.Preview)
	}

	sequences := admin.Group("/sequences")
	{
		sequences.POST("/run", cfg.SequenceHandler.RunDue)
		sequences.GET("", cfg.SequenceHandler.List)
		sequences.POST("", cfg.SequenceHandler.Create)
		sequences.GET("/:id", cfg.SequenceHandler.Get)
		sequences.PUT("/:id", cfg.SequenceHandler.Update)
		sequences.PATCH("/:id/active", cfg.SequenceHandler.SetActive)
		sequences.DELETE("/:id", cfg.SequenceHandler.Delete)
		sequences.POST("/:id/enrollments", cfg.SequenceHandler.Enroll)
	}

	enrollments := admin.Group("/enrollments")
	{
		enrollments.GET("", cfg.SequenceHandler.ListEnrollments)
		enrollments.POST("/:id/cancel", cfg.SequenceHandler.Unenroll)
	}

	social := admin.Group("/social-messages")
	{
		social.GET("", cfg.SocialHandler.List)
		social.POST("", cfg.SocialHandler.CreateInbound)
		social.GET("/:id", cfg.SocialHandler.Get)
		social.PATCH("/:id/status", cfg.SocialHandler.ChangeStatus)
		social.POST("/:id/reply", cfg.SocialHandler.Reply)
		social.PUT("/:id/contact", cfg.SocialHandler.LinkContact)
	}
}
