package handler

import (
	"encoding/json"
	"net/http"

	"github.com/bvrtu/quakeconnect-data/internal/api/respond"
	"github.com/bvrtu/quakeconnect-data/internal/safety"
)

// TriggerScan runs one alert scan pass synchronously and returns its
// summary. Guarded by InternalAuthMiddleware.
func (h *Handler) TriggerScan(w http.ResponseWriter, r *http.Request) {
	sum := h.scanner.Scan(r.Context())
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"success":          len(sum.Errors) == 0,
		"events_fetched":   sum.EventsFetched,
		"events_in_window": sum.EventsInWindow,
		"notified":         sum.Notified,
		"errors":           sum.Errors,
		"message":          sum.String(),
	})
}

// TriggerNewsMatch runs one news correlation pass synchronously and returns
// its summary. Guarded by InternalAuthMiddleware; also exposed unguarded at
// /news/match/test outside production.
func (h *Handler) TriggerNewsMatch(w http.ResponseWriter, r *http.Request) {
	sum := h.matcher.Run(r.Context())
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"success":             len(sum.Errors) == 0,
		"earthquakes_checked": sum.EarthquakesChecked,
		"articles_fetched":    sum.ArticlesFetched,
		"matched":             sum.Matched,
		"errors":              sum.Errors,
		"message":             sum.String(),
	})
}

// SafetyBroadcast fans an "I'm safe" announcement out to users who
// registered one of the sender's numbers as an emergency contact.
func (h *Handler) SafetyBroadcast(w http.ResponseWriter, r *http.Request) {
	var bc safety.Broadcast
	if err := json.NewDecoder(r.Body).Decode(&bc); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY",
			"request body must be a JSON safety broadcast")
		return
	}
	if bc.SenderID == "" {
		respond.WriteError(w, http.StatusBadRequest, "MISSING_SENDER",
			"sender_id is required")
		return
	}
	if len(bc.PhoneNumbers) == 0 {
		respond.WriteError(w, http.StatusBadRequest, "MISSING_PHONE_NUMBERS",
			"at least one phone number is required")
		return
	}

	notified, err := h.broadcaster.Send(r.Context(), bc)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "BROADCAST_FAILED",
			"safety broadcast failed")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"notified": notified,
		"message":  "safety broadcast dispatched",
	})
}
