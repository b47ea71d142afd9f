package api

// Homepage is the JSON form of the homepage view-model.
type Homepage struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	CTAText  string `json:"ctaText"`
	CTALink  string `json:"ctaLink"`
}

type Project struct {
	Slug         string   `json:"slug"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Link         string   `json:"link,omitempty"`
	Image        string   `json:"image,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	Order        int      `json:"order"`
}

type ProjectList struct {
	Projects []Project `json:"projects"`
}

// Page is a rendered markdown page.
type Page struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	HTML        string `json:"html"`
}

type Error struct {
	Error string `json:"error"`
}
