package v1handler

import (
	"net/http"

	"biomarker/internal/analytics"
)

// userList is the response body of ListUsers.
type userList struct {
	Users []analytics.UserSummary `json:"users"`
}

// ListUsers returns every user with derived age and session count.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.deps.Engine.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, userList{Users: users})
}

// Profile returns a user with their latest measurement per biomarker.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromPath(r)
	if err != nil {
		writeError(w, r, err)

		return
	}

	profile, err := h.deps.Engine.Profile(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, profile)
}
