package model

import "time"

// Shared defaults used by both the server and TUI binaries.
const (
	DefaultPollInterval   = 2 * time.Second
	DefaultRequestTimeout = 10 * time.Second
	DefaultAPIBaseURL     = "https://api.github.com"
	DefaultRepo           = "usebruno/bruno"
	DefaultTokenKey       = "GITHUB_API_TOKEN"
	DefaultLinkURL        = "https://www.usebruno.com"
	DefaultTitle          = "Bruno GitHub Stars"

	// DigitWidth is the fixed number of tiles in the counter strip.
	DigitWidth = 5

	// TransitionDuration is how long one tile takes to slide to its new digit.
	TransitionDuration = 300 * time.Millisecond
)
