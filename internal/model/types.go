package model

// Branding holds the static text the page shell renders around the counter.
type Branding struct {
	Title    string
	LinkURL  string
	LinkText string
}

// DefaultBranding returns the branding for the default repository.
func DefaultBranding() Branding {
	return Branding{
		Title:    DefaultTitle,
		LinkURL:  DefaultLinkURL,
		LinkText: "Go to usebruno.com →",
	}
}
