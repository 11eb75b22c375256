package response

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/catalog-webhook/internal/entity"
)

const source = "apiai-gartner-search-bot"

func TestConversationalEmptyPayload(t *testing.T) {
	cases := map[string]*entity.SearchResult{
		"nil result":  nil,
		"no keywords": {Records: records(2)},
		"nil records": {Query: entity.SearchQuery{Keywords: "cloud"}},
	}
	for name, res := range cases {
		t.Run(name, func(t *testing.T) {
			b, err := json.Marshal(Conversational(res, source))
			require.NoError(t, err)
			assert.Equal(t, "{}", string(b))
		})
	}
}

func TestConversationalResults(t *testing.T) {
	recs := records(2)
	recs[1].Analysts = []string{"Ann", "Bob"}
	res := &entity.SearchResult{Query: entity.SearchQuery{Keywords: "cloud", Limit: 3}, Records: recs}

	out := Conversational(res, source)

	wantSpeech := "I found 2 results for cloud, including:\nReport 1 by Analyst 1\nReport 2 by Ann and Bob"
	assert.Equal(t, wantSpeech, out.Speech)
	assert.Equal(t, wantSpeech, out.DisplayText)
	assert.Equal(t, source, out.Source)

	require.NotNil(t, out.Data)
	require.NotNil(t, out.Data.Slack)
	assert.Equal(t,
		"Found 2 results for cloud:"+
			"\n<https://catalog.example.com/doc/1|Report 1> by Analyst 1"+
			"\n<https://catalog.example.com/doc/2|Report 2> by Ann and Bob",
		out.Data.Slack.Text)
}

func TestConversationalEnumeratesEveryRecord(t *testing.T) {
	res := &entity.SearchResult{Query: entity.SearchQuery{Keywords: "cloud"}, Records: records(8)}

	out := Conversational(res, source)
	for _, rec := range res.Records {
		assert.Contains(t, out.Speech, rec.Title)
		assert.Contains(t, out.Data.Slack.Text, "<"+rec.URL+"|"+rec.Title+">")
	}
}

func TestConversationalEscapesSlackMarkup(t *testing.T) {
	res := &entity.SearchResult{
		Query: entity.SearchQuery{Keywords: "R&D"},
		Records: []entity.ResultRecord{{
			Title:    "Costs <2024> & Beyond",
			URL:      "https://catalog.example.com/doc?id=1&v=2",
			Analysts: []string{"Smith & Jones"},
		}},
	}

	out := Conversational(res, source)
	assert.Equal(t,
		"Found 1 result for R&amp;D:\n<https://catalog.example.com/doc?id=1&amp;v=2|Costs &lt;2024&gt; &amp; Beyond> by Smith &amp; Jones",
		out.Data.Slack.Text)
	assert.Contains(t, out.Speech, "Costs <2024> & Beyond by Smith & Jones")
}

func TestConversationalNoResults(t *testing.T) {
	res := &entity.SearchResult{Query: entity.SearchQuery{Keywords: "quantum"}, Records: []entity.ResultRecord{}}

	out := Conversational(res, source)
	assert.Equal(t, "Sorry, I couldn't find any research matching quantum.", out.Speech)
	assert.Equal(t, out.Speech, out.DisplayText)
	assert.Equal(t, source, out.Source)
}

func TestConversationalUnavailable(t *testing.T) {
	out := ConversationalUnavailable(source)
	assert.Equal(t, ConversationalUnavailableSpeech, out.Speech)
	assert.Equal(t, ConversationalUnavailableSpeech, out.Data.Slack.Text)
}
