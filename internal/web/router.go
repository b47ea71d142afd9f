// Package web is the HTTP surface of the portfolio: server-rendered pages, the
// JSON content API, the CMS gateway and the sync webhook, on gin.
package web

import (
	"net/http"

	"github.com/dfryer1193/portfolio/internal/middleware"
	"github.com/dfryer1193/portfolio/site/application"
	"github.com/dfryer1193/portfolio/site/domain"
	"github.com/dfryer1193/portfolio/site/presentation"
	"github.com/dfryer1193/portfolio/site/siteconfig"
	webhookhttp "github.com/dfryer1193/portfolio/webhook/http"
	"github.com/gin-gonic/gin"
)

// Deps are the collaborators the router serves. Admin and Webhook are
// optional; Images serves the content store's image directory when set.
type Deps struct {
	Site     *siteconfig.SiteConfig
	Pages    *application.PageService
	Renderer *presentation.Renderer
	Admin    domain.AdminGateway
	Webhook  http.Handler
	Images   http.FileSystem
}

type server struct {
	site     *siteconfig.SiteConfig
	pages    *application.PageService
	renderer *presentation.Renderer
}

func NewRouter(deps Deps) *gin.Engine {
	s := &server{
		site:     deps.Site,
		pages:    deps.Pages,
		renderer: deps.Renderer,
	}

	router := gin.New()
	router.Use(middleware.LoggingMiddleware())
	router.Use(gin.CustomRecovery(middleware.HandlePanics(s.errorPage)))
	router.Use(middleware.SecurityHeaders(deps.Site.ImageDomains))

	router.GET("/", s.home)
	router.HEAD("/", s.home)
	router.GET("/projects", s.projects)
	router.HEAD("/projects", s.projects)
	router.POST("/theme", s.toggleTheme)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.StaticFS("/static", http.FS(presentation.StaticFS()))
	if deps.Images != nil {
		router.StaticFS("/images", deps.Images)
	}

	NewApi(router, deps.Pages)

	admin := deps.Admin
	if admin == nil {
		admin = unavailableGateway{}
	}
	if prefix := deps.Site.CMSPrefix; prefix != "" {
		router.Any(prefix+"/*path", gin.WrapH(admin))
	}

	if deps.Webhook != nil {
		router.POST(webhookhttp.WebhookPath, gin.WrapH(deps.Webhook))
	}

	router.NoRoute(s.page)

	return router
}
