package presentation

import "github.com/dfryer1193/portfolio/site/domain"

// Hero is the homepage banner. The CTA anchor carries CTAText and CTALink as
// they were written in the document.
type Hero struct {
	Title    string
	Subtitle string
	CTAText  string
	CTALink  string
}

func NewHero(vm *domain.HomepageViewModel) *Hero {
	return &Hero{
		Title:    vm.Title,
		Subtitle: vm.Subtitle,
		CTAText:  vm.CTAText,
		CTALink:  vm.CTALink,
	}
}
