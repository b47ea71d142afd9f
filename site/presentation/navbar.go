package presentation

import "github.com/dfryer1193/portfolio/site/siteconfig"

type NavLink struct {
	Label  string
	Href   string
	Active bool
}

// Navbar is the sticky site header.
type Navbar struct {
	Brand       string
	BrandSuffix string
	CurrentPath string
	Links       []NavLink
	MenuLinks   []NavLink
	Scroll      *ScrollTracker
	Menu        *MobileMenu
	Theme       *ThemeToggle
	ClientTheme bool
}

func NewNavbar(site *siteconfig.SiteConfig, currentPath string, menu *MobileMenu, theme *ThemeToggle) *Navbar {
	if menu == nil {
		menu = NewMobileMenu(MenuClosed)
	}
	if theme == nil {
		theme = NewThemeToggle(nil)
	}
	return &Navbar{
		Brand:       site.Brand,
		BrandSuffix: site.BrandSuffix,
		CurrentPath: currentPath,
		Links:       navLinks(site.NavItems, currentPath),
		MenuLinks:   navLinks(site.NavMenuItems, currentPath),
		Scroll:      &ScrollTracker{},
		Menu:        menu,
		Theme:       theme,
	}
}

func navLinks(items []siteconfig.NavItem, currentPath string) []NavLink {
	links := make([]NavLink, 0, len(items))
	for _, item := range items {
		links = append(links, NavLink{
			Label:  item.Label,
			Href:   item.Href,
			Active: item.Href == currentPath,
		})
	}
	return links
}

func (n *Navbar) HeaderClass() string {
	if n.Scroll.Scrolled() {
		return "navbar navbar-scrolled"
	}
	return "navbar"
}

func (n *Navbar) MenuToggleHref() string {
	return n.Menu.ToggleHref(n.CurrentPath)
}

func (n *Navbar) MenuButtonLabel() string {
	if n.Menu.IsOpen() {
		return "Close menu"
	}
	return "Open menu"
}
