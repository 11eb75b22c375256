package response

import (
	"fmt"
	"strings"

	"github.com/user/catalog-webhook/internal/entity"
)

// Fixed voice replies.
const (
	VoiceNoKeywordsSpeech  = "Sorry, I didn't catch what you would like me to search for. Please try again with a topic."
	VoiceNoResultsSpeech   = "Sorry, I couldn't find any research matching your search."
	VoiceUnavailableSpeech = "Sorry, I can't reach the research catalog right now. Please try again later."
	VoiceWelcomeSpeech     = "Welcome to research search. What topic would you like me to look up?"
	VoiceHelpSpeech        = "You can ask me to find research on a topic, optionally by a specific analyst. What would you like to search for?"
	VoiceGoodbyeSpeech     = "Goodbye."
)

const voiceVersion = "1.0"

// VoiceResponse is the reply envelope expected by the voice platform.
type VoiceResponse struct {
	Version  string    `json:"version"`
	Response VoiceBody `json:"response"`
}

type VoiceBody struct {
	OutputSpeech     *OutputSpeech `json:"outputSpeech,omitempty"`
	Reprompt         *Reprompt     `json:"reprompt,omitempty"`
	Directives       []Directive   `json:"directives,omitempty"`
	ShouldEndSession bool          `json:"shouldEndSession"`
}

type OutputSpeech struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Reprompt struct {
	OutputSpeech OutputSpeech `json:"outputSpeech"`
}

type Directive struct {
	Type string `json:"type"`
}

func plainText(text string) *OutputSpeech {
	return &OutputSpeech{Type: "PlainText", Text: text}
}

// VoiceSpeech ends the session after speaking text.
func VoiceSpeech(text string) VoiceResponse {
	return VoiceResponse{
		Version:  voiceVersion,
		Response: VoiceBody{OutputSpeech: plainText(text), ShouldEndSession: true},
	}
}

// VoicePrompt speaks text and keeps the session open for an answer.
func VoicePrompt(text string) VoiceResponse {
	return VoiceResponse{
		Version: voiceVersion,
		Response: VoiceBody{
			OutputSpeech:     plainText(text),
			Reprompt:         &Reprompt{OutputSpeech: *plainText(text)},
			ShouldEndSession: false,
		},
	}
}

// VoiceDelegate hands slot collection back to the platform's dialog model.
func VoiceDelegate() VoiceResponse {
	return VoiceResponse{
		Version:  voiceVersion,
		Response: VoiceBody{Directives: []Directive{{Type: "Dialog.Delegate"}}},
	}
}

// VoiceEmpty acknowledges a request that must not be answered with speech.
func VoiceEmpty() VoiceResponse {
	return VoiceResponse{Version: voiceVersion}
}

// VoiceSearch formats a search result, speaking at most maxSpoken records.
func VoiceSearch(result *entity.SearchResult, maxSpoken int) VoiceResponse {
	if result == nil || result.Query.Keywords == "" {
		return VoiceSpeech(VoiceNoKeywordsSpeech)
	}
	n := len(result.Records)
	if n == 0 {
		return VoiceSpeech(VoiceNoResultsSpeech)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found %d %s for %s", n, plural(n, "result", "results"), result.Query.Keywords)
	spoken := result.Records
	if maxSpoken > 0 && len(spoken) > maxSpoken {
		spoken = spoken[:maxSpoken]
		fmt.Fprintf(&b, ". Here are the top %d:", maxSpoken)
	} else {
		b.WriteString(":")
	}
	for i, rec := range spoken {
		fmt.Fprintf(&b, "\n%d. %s.", i+1, byline(rec.Title, rec.Analysts))
	}
	return VoiceSpeech(b.String())
}
