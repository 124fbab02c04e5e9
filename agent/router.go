package agent

import "strings"

// relationshipKeywords mark questions about people and the relationships
// between productions: director/cast roles, co-appearance, and their Korean
// equivalents. Any hit routes the turn to the movie-graph search; everything
// else goes to the semantic search.
var relationshipKeywords = []string{
	"감독",
	"배우",
	"출연",
	"관계",
	"director",
	"actor",
	"actress",
	"cast",
	"starring",
	"appeared in",
	"relationship",
}

// DecideRoute inspects the most recent user turn and picks the retrieval
// strategy for this pass. It is a pure function of the state: deterministic,
// stateless, first keyword match wins.
func DecideRoute(state State) (Route, error) {
	query, err := latestUserQuery(state)
	if err != nil {
		return routeInvalid, err
	}

	lowered := strings.ToLower(query)
	for _, keyword := range relationshipKeywords {
		if strings.Contains(lowered, keyword) {
			return RouteGraph, nil
		}
	}
	return RouteVector, nil
}
