package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/passgen/internal/httpserver/deps"
	"github.com/MrSnakeDoc/passgen/internal/logger"
)

type historyResponse struct {
	History []historyItem `json:"history"`
}

// History lists the remembered passwords, most recent first.
func History(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, historyResponse{History: toHistory(d.Passwords.History())})
	}
}

// DeleteHistory removes the entry at {index}.
func DeleteHistory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, err := parseIndex(chi.URLParam(r, "index"))
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		h, err := d.Passwords.Delete(r.Context(), index)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, historyResponse{History: toHistory(h)})
	}
}

// DeleteHistoryID removes the entry with the given {id}.
func DeleteHistoryID(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h, err := d.Passwords.DeleteID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, historyResponse{History: toHistory(h)})
	}
}

// ExportHistory serves the entry at {index} as a password.txt attachment.
// ?format=detailed adds the generation metadata.
func ExportHistory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, err := parseIndex(chi.URLParam(r, "index"))
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		var detailed bool
		switch format := r.URL.Query().Get("format"); format {
		case "", "plain":
		case "detailed":
			detailed = true
		default:
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("unknown format %q", format)})
			return
		}

		name, body, err := d.Passwords.Export(index, detailed)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, name))
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(body)); err != nil {
			d.Logger.Debug("failed to write export", logger.Error(err))
		}
	}
}
