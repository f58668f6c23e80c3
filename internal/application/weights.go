package application

// ProviderWeight converts a provider's primary activity scalar into common
// activity minutes and names the category the provider contributes to.
type ProviderWeight struct {
	MinutesPerUnit float64
	Category       string
}

// DefaultWeights are the product's placeholder conversion rates: listening
// minutes count as-is, a watch hour as 60 minutes, a commit as 10 minutes,
// a kilometer as 5 minutes. Kept as named, injectable configuration rather
// than buried constants. Providers without an entry contribute zero.
var DefaultWeights = map[string]ProviderWeight{
	"spotify": {MinutesPerUnit: 1, Category: "Music"},
	"google":  {MinutesPerUnit: 60, Category: "Video"},
	"github":  {MinutesPerUnit: 10, Category: "Code"},
	"strava":  {MinutesPerUnit: 5, Category: "Fitness"},
}

// DefaultPriority is the fixed tie-break order for the top category: when
// two providers contribute exactly equal weighted minutes, the one earlier
// in this list wins, deterministically across runs. Providers not listed
// rank after all listed ones, in lexical order.
var DefaultPriority = []string{"spotify", "google", "github", "strava"}
