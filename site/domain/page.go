package domain

import "html/template"

// Page is a generic markdown page such as /about or /contact.
type Page struct {
	Slug        string
	Title       string
	Description string
	HTML        template.HTML
}

// Project is the view-model behind a project card.
type Project struct {
	Slug         string
	Title        string
	Description  string
	Link         string
	Image        string
	Technologies []string
	Order        int
}
