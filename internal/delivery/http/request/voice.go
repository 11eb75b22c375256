package request

import (
	"strings"

	"github.com/user/catalog-webhook/internal/entity"
)

// Voice request types.
const (
	LaunchRequest       = "LaunchRequest"
	IntentRequest       = "IntentRequest"
	SessionEndedRequest = "SessionEndedRequest"
)

// Dialog states reported with an IntentRequest.
const (
	DialogStarted    = "STARTED"
	DialogInProgress = "IN_PROGRESS"
	DialogCompleted  = "COMPLETED"
)

// Built-in intents.
const (
	HelpIntent     = "AMAZON.HelpIntent"
	StopIntent     = "AMAZON.StopIntent"
	CancelIntent   = "AMAZON.CancelIntent"
	FallbackIntent = "AMAZON.FallbackIntent"
)

// Slot names of the search intent.
const (
	TopicsSlot   = "topicsslot"
	AnalystsSlot = "analystsslot"
)

// VoiceRequest is the skill request envelope sent by the voice platform.
type VoiceRequest struct {
	Version string            `json:"version"`
	Request *VoiceRequestBody `json:"request"`
}

type VoiceRequestBody struct {
	Type        string       `json:"type"`
	RequestID   string       `json:"requestId"`
	Locale      string       `json:"locale,omitempty"`
	DialogState string       `json:"dialogState,omitempty"`
	Intent      *VoiceIntent `json:"intent,omitempty"`
}

type VoiceIntent struct {
	Name               string               `json:"name"`
	ConfirmationStatus string               `json:"confirmationStatus,omitempty"`
	Slots              map[string]VoiceSlot `json:"slots"`
}

type VoiceSlot struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// VoiceAction is what the service should do with a voice request.
type VoiceAction int

const (
	VoiceSearch VoiceAction = iota
	VoiceLaunch
	VoiceSessionEnded
	VoiceHelp
	VoiceStop
	VoiceDelegate
)

// Action classifies the request. Unknown types are treated as searches so
// that missing slots surface as a malformed request.
func (r *VoiceRequest) Action() VoiceAction {
	if r.Request == nil {
		return VoiceSearch
	}
	switch r.Request.Type {
	case LaunchRequest:
		return VoiceLaunch
	case SessionEndedRequest:
		return VoiceSessionEnded
	}

	if r.Request.Intent != nil {
		switch r.Request.Intent.Name {
		case HelpIntent, FallbackIntent:
			return VoiceHelp
		case StopIntent, CancelIntent:
			return VoiceStop
		}
	}

	// The platform collects remaining slots itself when we hand the dialog back.
	switch r.Request.DialogState {
	case DialogStarted, DialogInProgress:
		return VoiceDelegate
	}
	return VoiceSearch
}

// SearchQuery reads the topic and analyst slots. The topic slot is required.
func (r *VoiceRequest) SearchQuery(limit int) (entity.SearchQuery, error) {
	if r.Request == nil || r.Request.Intent == nil || r.Request.Intent.Slots == nil {
		return entity.SearchQuery{}, entity.ErrMalformedRequest
	}
	slots := r.Request.Intent.Slots
	keywords := slots[TopicsSlot].Value
	if strings.TrimSpace(keywords) == "" {
		return entity.SearchQuery{}, entity.ErrMalformedRequest
	}
	return entity.SearchQuery{
		Keywords: keywords,
		Analyst:  slots[AnalystsSlot].Value,
		Limit:    limit,
	}, nil
}
