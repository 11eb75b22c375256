package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/user/catalog-webhook/internal/delivery/http/response"
	"github.com/user/catalog-webhook/internal/entity"
	"github.com/user/catalog-webhook/internal/repository"
)

type fakeSearcher struct {
	calls   []entity.SearchQuery
	records []entity.ResultRecord
	err     error
}

func (f *fakeSearcher) Search(_ context.Context, q entity.SearchQuery) (*entity.SearchResult, error) {
	f.calls = append(f.calls, q)
	if f.err != nil {
		return nil, f.err
	}
	recs := f.records
	if q.Limit > 0 && len(recs) > q.Limit {
		recs = recs[:q.Limit]
	}
	return &entity.SearchResult{Query: q, Records: recs, SourceURL: "https://catalog.example.com/search"}, nil
}

func sampleRecords(n int) []entity.ResultRecord {
	out := []entity.ResultRecord{}
	for i := 1; i <= n; i++ {
		out = append(out, entity.ResultRecord{
			Title:    fmt.Sprintf("Report %d", i),
			URL:      fmt.Sprintf("https://catalog.example.com/doc/%d", i),
			Analysts: []string{fmt.Sprintf("Analyst %d", i)},
		})
	}
	return out
}

func newTestHandler(t *testing.T, s *fakeSearcher) *Handler {
	t.Helper()
	return NewHandler(s, Options{
		ChatDefaultCount:   3,
		VoiceSearchLimit:   10,
		VoiceSpokenResults: 3,
		SourceID:           "apiai-gartner-search-bot",
		CircuitState:       func() string { return "closed" },
	}, zaptest.NewLogger(t))
}

func post(t *testing.T, fn http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	fn(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	return rec
}

func TestConversationalSearch(t *testing.T) {
	s := &fakeSearcher{records: sampleRecords(5)}
	h := newTestHandler(t, s)

	rec := post(t, h.HandleConversational, `{"result":{"action":"gartnerSearchRequest",
		"parameters":{"keywords":["cloud","security"],"analyst":"Any"}}}`)

	require.Len(t, s.calls, 1)
	assert.Equal(t, entity.SearchQuery{Keywords: "cloud security", Analyst: "Any", Limit: 3}, s.calls[0])

	var resp response.ConversationalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.Speech, "I found 3 results for cloud security"))
	assert.Equal(t, resp.Speech, resp.DisplayText)
	assert.Equal(t, "apiai-gartner-search-bot", resp.Source)
	require.NotNil(t, resp.Data)
	require.NotNil(t, resp.Data.Slack)
	assert.Contains(t, resp.Data.Slack.Text, "<https://catalog.example.com/doc/1|Report 1> by Analyst 1")
}

func TestConversationalOtherActionIsIgnored(t *testing.T) {
	s := &fakeSearcher{}
	h := newTestHandler(t, s)

	rec := post(t, h.HandleConversational, `{"result":{"action":"smalltalk.greetings","parameters":{}}}`)
	assert.JSONEq(t, `{}`, rec.Body.String())
	assert.Empty(t, s.calls)
}

func TestConversationalMalformed(t *testing.T) {
	s := &fakeSearcher{}
	h := newTestHandler(t, s)

	for _, body := range []string{`not json`, `{}`, `{"result":{"action":"gartnerSearchRequest","parameters":{}}}`} {
		rec := post(t, h.HandleConversational, body)
		assert.JSONEq(t, `{}`, rec.Body.String())
	}
	assert.Empty(t, s.calls)
}

func TestConversationalUpstreamFailure(t *testing.T) {
	s := &fakeSearcher{err: fmt.Errorf("search: %w", repository.ErrFetchFailed)}
	h := newTestHandler(t, s)

	rec := post(t, h.HandleConversational, `{"result":{"action":"gartnerSearchRequest","parameters":{"keywords":"ai"}}}`)

	var resp response.ConversationalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, response.ConversationalUnavailableSpeech, resp.Speech)
}

func TestVoiceSearch(t *testing.T) {
	s := &fakeSearcher{records: sampleRecords(12)}
	h := newTestHandler(t, s)

	rec := post(t, h.HandleVoice, `{"version":"1.0","request":{"type":"IntentRequest","dialogState":"COMPLETED",
		"intent":{"name":"SearchIntent","slots":{"topicsslot":{"name":"topicsslot","value":"cloud"},
		"analystsslot":{"name":"analystsslot","value":"Lydia Leong"}}}}}`)

	require.Len(t, s.calls, 1)
	assert.Equal(t, entity.SearchQuery{Keywords: "cloud", Analyst: "Lydia Leong", Limit: 10}, s.calls[0])

	var resp response.VoiceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "1.0", resp.Version)
	require.NotNil(t, resp.Response.OutputSpeech)
	assert.Equal(t, "PlainText", resp.Response.OutputSpeech.Type)
	assert.True(t, strings.HasPrefix(resp.Response.OutputSpeech.Text, "I found 10 results for cloud. Here are the top 3:"))
	assert.True(t, resp.Response.ShouldEndSession)
}

func TestVoiceNoResults(t *testing.T) {
	s := &fakeSearcher{records: []entity.ResultRecord{}}
	h := newTestHandler(t, s)

	rec := post(t, h.HandleVoice, `{"request":{"type":"IntentRequest","intent":{"name":"SearchIntent",
		"slots":{"topicsslot":{"value":"quantum"}}}}}`)

	var resp response.VoiceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, response.VoiceNoResultsSpeech, resp.Response.OutputSpeech.Text)
	assert.True(t, resp.Response.ShouldEndSession)
}

func TestVoiceDialogDelegate(t *testing.T) {
	s := &fakeSearcher{}
	h := newTestHandler(t, s)

	rec := post(t, h.HandleVoice, `{"request":{"type":"IntentRequest","dialogState":"STARTED",
		"intent":{"name":"SearchIntent","slots":{"topicsslot":{"name":"topicsslot"}}}}}`)

	assert.JSONEq(t, `{"version":"1.0","response":{"directives":[{"type":"Dialog.Delegate"}],"shouldEndSession":false}}`, rec.Body.String())
	assert.Empty(t, s.calls)
}

func TestVoiceMissingTopic(t *testing.T) {
	s := &fakeSearcher{}
	h := newTestHandler(t, s)

	for _, body := range []string{`garbage`, `{"request":{"type":"IntentRequest","intent":{"name":"SearchIntent","slots":{}}}}`} {
		rec := post(t, h.HandleVoice, body)
		var resp response.VoiceResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, response.VoiceNoKeywordsSpeech, resp.Response.OutputSpeech.Text)
	}
	assert.Empty(t, s.calls)
}

func TestVoiceUpstreamFailure(t *testing.T) {
	s := &fakeSearcher{err: fmt.Errorf("search: %w: %w", repository.ErrFetchFailed, repository.ErrFetchTimeout)}
	h := newTestHandler(t, s)

	rec := post(t, h.HandleVoice, `{"request":{"type":"IntentRequest","intent":{"name":"SearchIntent",
		"slots":{"topicsslot":{"value":"ai"}}}}}`)

	var resp response.VoiceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, response.VoiceUnavailableSpeech, resp.Response.OutputSpeech.Text)
	assert.True(t, resp.Response.ShouldEndSession)
}

func TestVoiceLifecycleRequests(t *testing.T) {
	s := &fakeSearcher{}
	h := newTestHandler(t, s)

	rec := post(t, h.HandleVoice, `{"request":{"type":"LaunchRequest"}}`)
	var resp response.VoiceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, response.VoiceWelcomeSpeech, resp.Response.OutputSpeech.Text)
	assert.False(t, resp.Response.ShouldEndSession)

	rec = post(t, h.HandleVoice, `{"request":{"type":"IntentRequest","intent":{"name":"AMAZON.StopIntent"}}}`)
	resp = response.VoiceResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, response.VoiceGoodbyeSpeech, resp.Response.OutputSpeech.Text)
	assert.True(t, resp.Response.ShouldEndSession)

	rec = post(t, h.HandleVoice, `{"request":{"type":"SessionEndedRequest","reason":"USER_INITIATED"}}`)
	assert.JSONEq(t, `{"version":"1.0","response":{"shouldEndSession":false}}`, rec.Body.String())

	assert.Empty(t, s.calls)
}

func TestHealthCheck(t *testing.T) {
	h := newTestHandler(t, &fakeSearcher{})

	rec := httptest.NewRecorder()
	h.HandleHealthCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","circuit":"closed"}`, rec.Body.String())
}
