package presentation

import (
	"github.com/dfryer1193/portfolio/site/domain"
	"github.com/dfryer1193/portfolio/site/siteconfig"
)

type ProjectCard struct {
	Title        string
	Description  string
	Link         string
	Image        string
	Technologies []string
}

// NewProjectCard drops images from hosts outside the site's image allow-list.
func NewProjectCard(p *domain.Project, site *siteconfig.SiteConfig) *ProjectCard {
	card := &ProjectCard{
		Title:        p.Title,
		Description:  p.Description,
		Link:         p.Link,
		Technologies: p.Technologies,
	}
	if site.ImageAllowed(p.Image) {
		card.Image = p.Image
	}
	return card
}

func (c *ProjectCard) HasTechnologies() bool {
	return len(c.Technologies) > 0
}
