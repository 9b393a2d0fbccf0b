// Package handlers implements the HTTP surface of the EPG API server.
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/avkb/epg-api/config"
	"github.com/avkb/epg-api/internal/epg"
	"github.com/avkb/epg-api/internal/feed"
	"github.com/sirupsen/logrus"
)

// EPGHandler serves the now/next lookup for a single channel.
type EPGHandler struct {
	loader   *feed.Loader
	resolver *epg.Resolver
	prefix   string
	logger   *logrus.Logger
	now      func() time.Time
}

// NewEPGHandler creates a new EPG handler instance.
func NewEPGHandler(loader *feed.Loader, resolver *epg.Resolver, cfg *config.Config, logger *logrus.Logger) *EPGHandler {
	return &EPGHandler{
		loader:   loader,
		resolver: resolver,
		prefix:   cfg.ChannelPrefix,
		logger:   logger,
		now:      time.Now,
	}
}

type channelJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type programJSON struct {
	Title string  `json:"title"`
	Desc  string  `json:"desc"`
	Start string  `json:"start"`
	Stop  string  `json:"stop"`
	Icon  *string `json:"icon"`
}

type epgResponse struct {
	Channel  channelJSON  `json:"Channel"`
	Current  *programJSON `json:"Current"`
	Upcoming *programJSON `json:"Upcoming"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *EPGHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing_channel_id", "query parameter 'id' is required")
		return
	}

	channelID := h.prefix + id

	data, err := h.loader.Load(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load program guide")
		writeError(w, http.StatusBadGateway, "upstream_error", "failed to retrieve the program guide")
		return
	}

	tv, err := epg.ParseStream(bytes.NewReader(data))
	if err != nil {
		h.logger.WithError(err).Error("Failed to parse program guide")
		writeError(w, http.StatusBadGateway, "upstream_error", "failed to parse the program guide")
		return
	}

	// One snapshot of the clock for the whole resolution.
	now := h.now()

	result, err := h.resolver.Resolve(tv, channelID, now)
	if err != nil {
		if errors.Is(err, epg.ErrChannelNotFound) {
			writeError(w, http.StatusNotFound, "channel_not_found", "no channel found for id "+channelID)
			return
		}
		h.logger.WithError(err).Error("Failed to resolve channel programs")
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to resolve channel programs")
		return
	}

	h.logger.WithFields(logrus.Fields{
		"channel":      result.Channel.ID,
		"has_current":  result.Current != nil,
		"has_upcoming": result.Upcoming != nil,
	}).Debug("Resolved channel programs")

	writeJSON(w, http.StatusOK, &epgResponse{
		Channel: channelJSON{
			ID:   result.Channel.ID,
			Name: result.Channel.Name,
			Icon: result.Channel.Icon,
		},
		Current:  toProgramJSON(result.Current),
		Upcoming: toProgramJSON(result.Upcoming),
	})
}

func toProgramJSON(program *epg.Program) *programJSON {
	if program == nil {
		return nil
	}

	out := &programJSON{
		Title: program.Title,
		Desc:  program.Desc,
		Start: program.Start.Format(epg.DisplayTimeLayout),
		Stop:  program.Stop.Format(epg.DisplayTimeLayout),
	}
	if program.Icon != "" {
		icon := program.Icon
		out.Icon = &icon
	}

	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, &errorResponse{Code: code, Message: message})
}
