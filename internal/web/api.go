package web

import (
	"errors"
	"net/http"

	"github.com/dfryer1193/portfolio/api"
	"github.com/dfryer1193/portfolio/site/application"
	"github.com/dfryer1193/portfolio/site/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type contentApi struct {
	pages *application.PageService
}

// NewApi registers the read-only JSON content API.
func NewApi(router *gin.Engine, pages *application.PageService) {
	a := &contentApi{pages: pages}

	contentV1 := router.Group("content/v1")
	{
		contentV1.GET("/homepage", a.GetHomepage)
		contentV1.GET("/projects", a.GetProjects)
		contentV1.GET("/pages/:slug", a.GetPage)
	}
}

func apiError(c *gin.Context, err error) {
	var (
		nf *domain.NotFoundError
		ve *domain.ValidationError
		mc *domain.MalformedContentError
	)
	switch {
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, api.Error{Error: "not found"})
	case errors.As(err, &ve), errors.As(err, &mc):
		log.Error().Err(err).Msg("Content document is invalid")
		c.JSON(http.StatusInternalServerError, api.Error{Error: "content unavailable"})
	default:
		log.Error().Err(err).Msg("Failed to load content")
		c.JSON(http.StatusInternalServerError, api.Error{Error: "internal error"})
	}
}

func (a *contentApi) GetHomepage(c *gin.Context) {
	vm, err := a.pages.Homepage(c.Request.Context())
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, toHomepage(vm))
}

func (a *contentApi) GetProjects(c *gin.Context) {
	projects, err := a.pages.Projects(c.Request.Context())
	if err != nil {
		apiError(c, err)
		return
	}
	out := api.ProjectList{Projects: make([]api.Project, 0, len(projects))}
	for _, p := range projects {
		out.Projects = append(out.Projects, toProject(p))
	}
	c.JSON(http.StatusOK, out)
}

func (a *contentApi) GetPage(c *gin.Context) {
	page, err := a.pages.Page(c.Request.Context(), c.Param("slug"))
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.Page{
		Slug:        page.Slug,
		Title:       page.Title,
		Description: page.Description,
		HTML:        string(page.HTML),
	})
}

func toHomepage(vm *domain.HomepageViewModel) api.Homepage {
	return api.Homepage{
		Title:    vm.Title,
		Subtitle: vm.Subtitle,
		CTAText:  vm.CTAText,
		CTALink:  vm.CTALink,
	}
}

func toProject(p *domain.Project) api.Project {
	return api.Project{
		Slug:         p.Slug,
		Title:        p.Title,
		Description:  p.Description,
		Link:         p.Link,
		Image:        p.Image,
		Technologies: p.Technologies,
		Order:        p.Order,
	}
}
