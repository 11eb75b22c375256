package response

import (
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"github.com/user/catalog-webhook/internal/entity"
)

// ConversationalResponse is the fulfillment reply for the conversational
// platform. The zero value encodes as {}, meaning "nothing to say".
type ConversationalResponse struct {
	Speech      string              `json:"speech,omitempty"`
	DisplayText string              `json:"displayText,omitempty"`
	Data        *ConversationalData `json:"data,omitempty"`
	Source      string              `json:"source,omitempty"`
}

// ConversationalData carries per-integration payloads.
type ConversationalData struct {
	Slack *slack.WebhookMessage `json:"slack,omitempty"`
}

// ConversationalUnavailableSpeech is spoken when the catalog cannot be reached.
const ConversationalUnavailableSpeech = "Sorry, I can't reach the research catalog right now. Please try again later."

func conversational(speech, card, source string) ConversationalResponse {
	return ConversationalResponse{
		Speech:      speech,
		DisplayText: speech,
		Data:        &ConversationalData{Slack: &slack.WebhookMessage{Text: card}},
		Source:      source,
	}
}

// Conversational formats a search result as speech plus a Slack chat card.
func Conversational(result *entity.SearchResult, source string) ConversationalResponse {
	if result == nil || result.Query.Keywords == "" || result.Records == nil {
		return ConversationalResponse{}
	}
	keywords := result.Query.Keywords
	n := len(result.Records)

	if n == 0 {
		speech := fmt.Sprintf("Sorry, I couldn't find any research matching %s.", keywords)
		return conversational(speech, escapeSlack(speech), source)
	}

	var speech, card strings.Builder
	fmt.Fprintf(&speech, "I found %d %s for %s, including:", n, plural(n, "result", "results"), keywords)
	fmt.Fprintf(&card, "Found %d %s for %s:", n, plural(n, "result", "results"), escapeSlack(keywords))
	for _, rec := range result.Records {
		fmt.Fprintf(&speech, "\n%s", byline(rec.Title, rec.Analysts))
		fmt.Fprintf(&card, "\n<%s|%s>", escapeSlack(rec.URL), escapeSlack(rec.Title))
		if len(rec.Analysts) > 0 {
			card.WriteString(" by " + escapeSlack(joinAnalysts(rec.Analysts)))
		}
	}
	return conversational(speech.String(), card.String(), source)
}

// ConversationalUnavailable tells the user the catalog could not be searched.
func ConversationalUnavailable(source string) ConversationalResponse {
	return conversational(ConversationalUnavailableSpeech, ConversationalUnavailableSpeech, source)
}

var slackEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// escapeSlack escapes the control characters of Slack message markup.
func escapeSlack(s string) string {
	return slackEscaper.Replace(s)
}
