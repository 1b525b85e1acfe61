package api

const (
	APIPrefix = "/api"

	LoginRoute = APIPrefix + "/auth/login"

	// routes are matched on the cleaned path, which never has a trailing slash
	PokemonParent    = APIPrefix + "/pokemon"
	ListPokemonRoute = PokemonParent
	GetPokemonRoute  = PokemonParent + "/{id}"
	ListReviewsRoute = PokemonParent + "/{id}/reviews"
	GetReviewRoute   = PokemonParent + "/{id}/reviews/{reviewId}"

	AdminParent     = APIPrefix + "/admin"
	WhoamiRoute     = AdminParent + "/whoami"
	ListAuditsRoute = AdminParent + "/audit"

	// ops listener
	HealthCheckRoute = "/healthz"
	AboutRoute       = "/about"
	MetricsRoute     = "/metrics"
)
