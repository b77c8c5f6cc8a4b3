package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/marbabud/domownik/internal/middleware"
	"github.com/marbabud/domownik/internal/models"
	"github.com/marbabud/domownik/internal/notify"
	"github.com/marbabud/domownik/internal/protocols"
	"github.com/marbabud/domownik/internal/store"
	"github.com/marbabud/domownik/internal/utils"
)

// CreateDraftRequest carries a quarantine save from the installer form.
type CreateDraftRequest struct {
	Target string    `json:"collection_target"`
	Fields store.Doc `json:"fields"`
}

// listDrafts returns the caller's drafts; admins see everything.
func (r *Router) listDrafts(w http.ResponseWriter, req *http.Request) {
	monterID := middleware.UserFromContext(req.Context())
	if middleware.RoleFromContext(req.Context()) == models.RoleAdmin {
		monterID = req.URL.Query().Get("monter")
	}
	drafts, err := r.repo.ListDrafts(req.Context(), monterID)
	if err != nil {
		respondStoreError(w, err, "Drafts not found")
		return
	}
	respondJSON(w, http.StatusOK, drafts)
}

// createDraft stores an unfinished protocol in quarantine.
func (r *Router) createDraft(w http.ResponseWriter, req *http.Request) {
	var body CreateDraftRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	target, err := protocols.ParseKind(body.Target)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Unknown collection target")
		return
	}

	monterID := middleware.UserFromContext(req.Context())
	id, err := r.repo.CreateDraft(req.Context(), body.Fields, monterID, target)
	if err != nil {
		respondStoreError(w, err, "Draft not found")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// getDraft returns one quarantine document.
func (r *Router) getDraft(w http.ResponseWriter, req *http.Request) {
	draft, err := r.repo.GetDraft(req.Context(), mux.Vars(req)["id"])
	if err != nil {
		respondStoreError(w, err, "Draft not found")
		return
	}
	respondJSON(w, http.StatusOK, draft)
}

// updateDraft merges edited fields into a draft.
func (r *Router) updateDraft(w http.ResponseWriter, req *http.Request) {
	var fields store.Doc
	if err := json.NewDecoder(req.Body).Decode(&fields); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := r.repo.UpdateDraft(req.Context(), mux.Vars(req)["id"], fields); err != nil {
		respondStoreError(w, err, "Draft not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Draft updated"})
}

// deleteDraft discards a draft.
func (r *Router) deleteDraft(w http.ResponseWriter, req *http.Request) {
	if err := r.repo.DeleteDraft(req.Context(), mux.Vars(req)["id"]); err != nil {
		respondStoreError(w, err, "Draft not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Draft deleted"})
}

// finalizeDraft promotes a single draft into its target collection.
func (r *Router) finalizeDraft(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]

	draft, err := r.repo.GetDraft(req.Context(), id)
	if err != nil {
		respondStoreError(w, err, "Draft not found")
		return
	}
	target := draft.GetString("collection_target")

	recordID, code, err := r.repo.FinalizeDraft(req.Context(), id)
	if err != nil {
		respondStoreError(w, err, "Draft not found")
		return
	}

	r.hub.Publish(notify.Event{Type: "protocol.finalized", Kind: target, ID: recordID, Kod: code})

	respondJSON(w, http.StatusOK, map[string]string{
		"id":         recordID,
		"kod":        code,
		"collection": target,
		"share_link": utils.ShareLink(r.cfg.BaseURL, target, recordID, code),
	})
}

// FinalizeResult is one entry of a bulk finalize response.
type FinalizeResult struct {
	DraftID    string `json:"draft_id"`
	RecordID   string `json:"doc_id,omitempty"`
	Kod        string `json:"kod,omitempty"`
	Collection string `json:"collection,omitempty"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

// finalizeAllDrafts promotes every draft of the caller, reporting per-draft
// results instead of failing the whole batch.
func (r *Router) finalizeAllDrafts(w http.ResponseWriter, req *http.Request) {
	monterID := middleware.UserFromContext(req.Context())
	drafts, err := r.repo.ListDrafts(req.Context(), monterID)
	if err != nil {
		respondStoreError(w, err, "Drafts not found")
		return
	}
	if len(drafts) == 0 {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"message": "No drafts to finalize",
			"results": []FinalizeResult{},
		})
		return
	}

	results := make([]FinalizeResult, 0, len(drafts))
	succeeded := 0
	for _, draft := range drafts {
		res := FinalizeResult{DraftID: draft.ID(), Collection: draft.GetString("collection_target")}
		recordID, code, err := r.repo.FinalizeDraft(req.Context(), draft.ID())
		if err != nil {
			res.Status = "error"
			res.Error = err.Error()
		} else {
			res.Status = "success"
			res.RecordID = recordID
			res.Kod = code
			succeeded++
			r.hub.Publish(notify.Event{Type: "protocol.finalized", Kind: res.Collection, ID: recordID, Kod: code})
		}
		results = append(results, res)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"succeeded": succeeded,
		"failed":    len(drafts) - succeeded,
		"results":   results,
	})
}
