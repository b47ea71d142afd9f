package domain

// HomepageViewModel is the typed projection of the homepage document.
type HomepageViewModel struct {
	Title    string
	Subtitle string
	CTAText  string
	CTALink  string
}
