package api

import (
	"net/http"

	"github.com/bayworx/event-management-system-sub001/cmd/middleware"
	"github.com/bayworx/event-management-system-sub001/internal/auth"
	"github.com/bayworx/event-management-system-sub001/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/wb-go/wbf/ginext"
)

type Routers struct {
	Service service.Service
	Tokens  *auth.TokenManager
	// MaxBodyBytes caps request bodies; zero leaves them unbounded.
	MaxBodyBytes int64
}

func NewRouters(r *Routers) *ginext.Engine {
	app := ginext.New("release")

	app.Use(middleware.LoggingMiddleware())
	app.Use(cors.New(corsConfig()))
	if r.MaxBodyBytes > 0 {
		app.Use(middleware.BodyLimit(r.MaxBodyBytes))
	}

	app.GET("/health", func(c *ginext.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	Mount(app.Engine.Group("/v1"), r)

	return app
}

func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	return cfg
}

// Mount registers the /v1 routes on group.
func Mount(group gin.IRouter, r *Routers) {
	s := r.Service

	group.GET("/events", s.ListEvents)
	group.GET("/events/:slug", s.GetEvent)
	group.POST("/events/:slug/register", s.Register)
	group.GET("/events/:slug/files", s.ListEventFiles)
	group.GET("/files/:id/download", s.DownloadFile)
	group.GET("/attendees/verify", s.VerifyEmail)
	group.POST("/attendees/login", s.AttendeeLogin)
	group.POST("/admin/login", s.AdminLogin)
	group.GET("/featured", s.ListFeatured)
	group.POST("/featured/:id/click", s.ClickFeatured)

	attendee := group.Group("/messages", r.Tokens.RequireAttendee())
	attendee.POST("", s.SendMessage)
	attendee.GET("", s.ListSentMessages)

	admin := group.Group("/admin", r.Tokens.RequireAdmin())

	admin.GET("/events", s.AdminListEvents)
	admin.POST("/events", s.CreateEvent)
	admin.GET("/events/:id", s.AdminGetEvent)
	admin.PUT("/events/:id", s.UpdateEvent)
	admin.DELETE("/events/:id", s.DeleteEvent)
	admin.POST("/events/:id/occurrences", s.GenerateOccurrences)
	admin.GET("/events/:id/attendees", s.ListEventAttendees)
	admin.GET("/events/:id/administrators", s.ListEventAdministrators)
	admin.POST("/events/:id/administrators", s.AssignEventAdministrator)
	admin.POST("/events/:id/presenters", s.AttachPresenter)
	admin.POST("/events/:id/agenda", s.CreateAgendaItem)
	admin.DELETE("/events/:id/agenda/:itemID", s.DeleteAgendaItem)
	admin.POST("/events/:id/files", s.UploadFile)

	admin.POST("/attendees/:id/check-in", s.CheckIn)

	admin.GET("/presenters", s.ListPresenters)
	admin.POST("/presenters", s.CreatePresenter)

	admin.GET("/messages", s.Inbox)
	admin.POST("/messages/:id/read", s.MarkMessageRead)

	admin.DELETE("/files/:id", s.DeactivateFile)

	admin.GET("/imports", s.ListImports)
	admin.POST("/imports", s.CreateImport)
	admin.GET("/imports/:id", s.GetImport)

	admin.GET("/featured", s.AdminListFeatured)
	admin.POST("/featured", s.CreateFeatured)
	admin.PUT("/featured/:id", s.UpdateFeatured)
	admin.GET("/featured/:id/form", s.FeaturedForm)

	super := admin.Group("/administrators", r.Tokens.RequireSuperAdmin())
	super.GET("", s.ListAdministrators)
	super.POST("", s.CreateAdministrator)
}
