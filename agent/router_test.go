package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

func stateWithQuery(query string) State {
	return State{Messages: []llms.MessageContent{human(query)}}
}

func TestDecideRoute(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		query string
		want  Route
	}{
		{"korean director", "봉준호 감독 작품 알려줘", RouteGraph},
		{"korean actor", "이 배우가 나온 영화는?", RouteGraph},
		{"korean appearance", "기생충에 출연한 사람", RouteGraph},
		{"korean relationship", "두 영화의 관계가 뭐야", RouteGraph},
		{"english director", "Who is the director of Parasite?", RouteGraph},
		{"english actor", "Which actor played the lead?", RouteGraph},
		{"english actress", "name an actress from Okja", RouteGraph},
		{"english cast", "show me the cast", RouteGraph},
		{"english starring", "movies starring Song Kang-ho", RouteGraph},
		{"english appeared in", "who appeared in both films", RouteGraph},
		{"english relationship", "what is the relationship between them", RouteGraph},
		{"uppercase keyword", "THE DIRECTOR OF OLDBOY", RouteGraph},
		{"keyword inside word", "the castle on the hill", RouteGraph},
		{"plain recommendation", "액션 영화 추천해줘", RouteVector},
		{"plot question", "우주를 배경으로 한 영화 줄거리", RouteVector},
		{"english plot question", "movies about time travel", RouteVector},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			route, err := DecideRoute(stateWithQuery(tc.query))
			require.NoError(t, err)
			assert.Equal(t, tc.want, route, "query %q", tc.query)
		})
	}
}

func TestDecideRouteUsesLatestTurnOnly(t *testing.T) {
	t.Parallel()

	state := State{Messages: []llms.MessageContent{
		human("봉준호 감독 작품 알려줘"),
		ai("기생충, 살인의 추억, 괴물이 있습니다."),
		human("그중에 제일 무서운 영화 추천해줘"),
	}}

	route, err := DecideRoute(state)
	require.NoError(t, err)
	assert.Equal(t, RouteVector, route)
}

func TestDecideRouteDeterministic(t *testing.T) {
	t.Parallel()

	state := stateWithQuery("영화 감독과 배우의 관계")
	first, err := DecideRoute(state)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		route, err := DecideRoute(state)
		require.NoError(t, err)
		assert.Equal(t, first, route)
	}
}

func TestDecideRouteEmptyConversation(t *testing.T) {
	t.Parallel()

	_, err := DecideRoute(State{})
	assert.ErrorIs(t, err, ErrEmptyConversation)
}
