package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/user/catalog-webhook/internal/delivery/http/request"
	"github.com/user/catalog-webhook/internal/delivery/http/response"
	"github.com/user/catalog-webhook/internal/usecase"
)

const maxBodyBytes = 1 << 20

// Options tunes how platform requests are translated and answered.
type Options struct {
	ChatDefaultCount   int
	VoiceSearchLimit   int
	VoiceSpokenResults int
	SourceID           string
	// CircuitState reports the upstream breaker state for health checks. Optional.
	CircuitState func() string
}

type Handler struct {
	searcher usecase.Searcher
	opts     Options
	logger   *zap.Logger
}

func NewHandler(searcher usecase.Searcher, opts Options, logger *zap.Logger) *Handler {
	return &Handler{
		searcher: searcher,
		opts:     opts,
		logger:   logger,
	}
}

// HandleConversational answers the conversational platform's fulfillment webhook.
func (h *Handler) HandleConversational(w http.ResponseWriter, r *http.Request) {
	var req request.ConversationalRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.logger.Warn("Invalid conversational request body", zap.Error(err))
		h.writeJSON(w, http.StatusOK, response.ConversationalResponse{})
		return
	}

	q, err := req.SearchQuery(h.opts.ChatDefaultCount)
	if err != nil {
		if errors.Is(err, request.ErrNotMyIntent) {
			h.logger.Debug("Ignoring conversational action", zap.String("action", req.Result.Action))
		} else {
			h.logger.Warn("Malformed conversational request", zap.Error(err))
		}
		h.writeJSON(w, http.StatusOK, response.ConversationalResponse{})
		return
	}

	result, err := h.searcher.Search(r.Context(), q)
	if err != nil {
		h.logger.Error("Conversational search failed", zap.String("keywords", q.Keywords), zap.Error(err))
		h.writeJSON(w, http.StatusOK, response.ConversationalUnavailable(h.opts.SourceID))
		return
	}

	resp := response.Conversational(result, h.opts.SourceID)
	h.logger.Info("Conversational response", zap.String("keywords", q.Keywords), zap.Int("records", len(result.Records)))
	h.writeJSON(w, http.StatusOK, resp)
}

// HandleVoice answers the voice platform's skill endpoint.
func (h *Handler) HandleVoice(w http.ResponseWriter, r *http.Request) {
	var req request.VoiceRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.logger.Warn("Invalid voice request body", zap.Error(err))
		h.writeJSON(w, http.StatusOK, response.VoiceSpeech(response.VoiceNoKeywordsSpeech))
		return
	}

	switch req.Action() {
	case request.VoiceLaunch:
		h.writeJSON(w, http.StatusOK, response.VoicePrompt(response.VoiceWelcomeSpeech))
		return
	case request.VoiceHelp:
		h.writeJSON(w, http.StatusOK, response.VoicePrompt(response.VoiceHelpSpeech))
		return
	case request.VoiceStop:
		h.writeJSON(w, http.StatusOK, response.VoiceSpeech(response.VoiceGoodbyeSpeech))
		return
	case request.VoiceSessionEnded:
		h.writeJSON(w, http.StatusOK, response.VoiceEmpty())
		return
	case request.VoiceDelegate:
		h.writeJSON(w, http.StatusOK, response.VoiceDelegate())
		return
	}

	q, err := req.SearchQuery(h.opts.VoiceSearchLimit)
	if err != nil {
		h.logger.Warn("Malformed voice request", zap.Error(err))
		h.writeJSON(w, http.StatusOK, response.VoiceSearch(nil, h.opts.VoiceSpokenResults))
		return
	}

	result, err := h.searcher.Search(r.Context(), q)
	if err != nil {
		h.logger.Error("Voice search failed", zap.String("keywords", q.Keywords), zap.Error(err))
		h.writeJSON(w, http.StatusOK, response.VoiceSpeech(response.VoiceUnavailableSpeech))
		return
	}

	h.logger.Info("Voice response", zap.String("keywords", q.Keywords), zap.Int("records", len(result.Records)))
	h.writeJSON(w, http.StatusOK, response.VoiceSearch(result, h.opts.VoiceSpokenResults))
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok"}
	if h.opts.CircuitState != nil {
		resp["circuit"] = h.opts.CircuitState()
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}
