package presentation

import (
	"fmt"
	"time"

	"github.com/dfryer1193/portfolio/site/siteconfig"
)

type SocialLink struct {
	Label string
	Href  string
}

type Footer struct {
	Social    []SocialLink
	Nav       []siteconfig.NavItem
	Copyright string
}

// NewFooter builds the footer for the year now returns.
func NewFooter(site *siteconfig.SiteConfig, now func() time.Time) *Footer {
	var social []SocialLink
	for _, l := range []SocialLink{
		{Label: "GitHub", Href: site.Links.GitHub},
		{Label: "LinkedIn", Href: site.Links.LinkedIn},
		{Label: "Email", Href: site.Links.Email},
	} {
		if l.Href != "" {
			social = append(social, l)
		}
	}

	return &Footer{
		Social:    social,
		Nav:       site.NavItems,
		Copyright: fmt.Sprintf("© %d %s. All rights reserved.", now().Year(), site.Owner),
	}
}
