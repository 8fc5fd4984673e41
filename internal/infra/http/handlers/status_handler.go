package handlers

import (
	"net/http"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// Statuses (GET /statuses) lista os status oferecidos no formulário de lead.
func Statuses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"statuses": entity.StatusOptions(),
		"default":  entity.DefaultStatus,
	})
}
