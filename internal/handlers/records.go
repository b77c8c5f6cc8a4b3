package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/marbabud/domownik/internal/middleware"
	"github.com/marbabud/domownik/internal/notify"
	"github.com/marbabud/domownik/internal/store"
	"github.com/marbabud/domownik/internal/utils"
)

// listProtocols returns every record of a kind, newest first.
func (r *Router) listProtocols(w http.ResponseWriter, req *http.Request) {
	kind, err := kindFromRequest(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Unknown protocol kind")
		return
	}
	docs, err := r.repo.ListAll(req.Context(), kind)
	if err != nil {
		respondStoreError(w, err, "Protocols not found")
		return
	}
	respondJSON(w, http.StatusOK, docs)
}

// listAwaiting returns the seller worklist: measured, not yet completed.
func (r *Router) listAwaiting(w http.ResponseWriter, req *http.Request) {
	kind, err := kindFromRequest(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Unknown protocol kind")
		return
	}
	docs, err := r.repo.ListAwaitingCompletion(req.Context(), kind)
	if err != nil {
		respondStoreError(w, err, "Protocols not found")
		return
	}
	respondJSON(w, http.StatusOK, docs)
}

// findByAccessCode locates a protocol by the code the installer handed over.
func (r *Router) findByAccessCode(w http.ResponseWriter, req *http.Request) {
	kind, err := kindFromRequest(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Unknown protocol kind")
		return
	}
	doc, err := r.repo.FindByAccessCode(req.Context(), kind, mux.Vars(req)["code"])
	if err != nil {
		respondStoreError(w, err, "No protocol with that access code")
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

// getProtocol returns a single record.
func (r *Router) getProtocol(w http.ResponseWriter, req *http.Request) {
	kind, err := kindFromRequest(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Unknown protocol kind")
		return
	}
	doc, err := r.repo.Get(req.Context(), kind, mux.Vars(req)["id"])
	if err != nil {
		respondStoreError(w, err, "Protocol not found")
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

// createMeasuredProtocol stores an installer submission directly in a final
// collection, skipping the draft stage.
func (r *Router) createMeasuredProtocol(w http.ResponseWriter, req *http.Request) {
	kind, err := kindFromRequest(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Unknown protocol kind")
		return
	}
	var fields store.Doc
	if err := json.NewDecoder(req.Body).Decode(&fields); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	monterID := middleware.UserFromContext(req.Context())
	id, code, err := r.repo.CreateMeasuredRecord(req.Context(), fields, monterID, kind)
	if err != nil {
		respondStoreError(w, err, "Protocol not found")
		return
	}

	r.hub.Publish(notify.Event{Type: "protocol.finalized", Kind: kind.Collection(), ID: id, Kod: code})

	respondJSON(w, http.StatusCreated, map[string]string{
		"id":         id,
		"kod":        code,
		"share_link": utils.ShareLink(r.cfg.BaseURL, kind.Collection(), id, code),
	})
}

// completeBySeller merges the seller's product selection into a protocol.
func (r *Router) completeBySeller(w http.ResponseWriter, req *http.Request) {
	kind, err := kindFromRequest(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Unknown protocol kind")
		return
	}
	var fields store.Doc
	if err := json.NewDecoder(req.Body).Decode(&fields); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	id := mux.Vars(req)["id"]
	sellerID := middleware.UserFromContext(req.Context())
	if err := r.repo.CompleteBySeller(req.Context(), kind, id, fields, sellerID); err != nil {
		respondStoreError(w, err, "Protocol not found")
		return
	}

	r.hub.Publish(notify.Event{Type: "protocol.completed", Kind: kind.Collection(), ID: id})

	respondJSON(w, http.StatusOK, map[string]string{"message": "Protocol completed"})
}

// updateProtocolStatus writes an administrative status override.
func (r *Router) updateProtocolStatus(w http.ResponseWriter, req *http.Request) {
	kind, err := kindFromRequest(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Unknown protocol kind")
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Status == "" {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := r.repo.UpdateStatus(req.Context(), kind, mux.Vars(req)["id"], body.Status); err != nil {
		respondStoreError(w, err, "Protocol not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Status updated"})
}

// deleteProtocol removes a record and its stored photos.
func (r *Router) deleteProtocol(w http.ResponseWriter, req *http.Request) {
	kind, err := kindFromRequest(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Unknown protocol kind")
		return
	}
	id := mux.Vars(req)["id"]
	if err := r.repo.Delete(req.Context(), kind, id); err != nil {
		respondStoreError(w, err, "Protocol not found")
		return
	}
	if err := r.blobs.DeletePrefix(kind.Collection() + "/" + id + "/"); err != nil {
		// Record is gone; orphaned blobs are a cleanup concern, not a failure
		respondJSON(w, http.StatusOK, map[string]string{
			"message": "Protocol deleted, image cleanup incomplete",
			"id":      id,
		})
		return
	}

	r.hub.Publish(notify.Event{Type: "protocol.deleted", Kind: kind.Collection(), ID: id})

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Protocol deleted",
		"id":      id,
	})
}

// resolveShareLink serves the seller handoff deep link. The access code in
// the query string is the only authorization.
func (r *Router) resolveShareLink(w http.ResponseWriter, req *http.Request) {
	kind, err := kindFromRequest(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Unknown protocol kind")
		return
	}
	id := mux.Vars(req)["id"]
	code := req.URL.Query().Get("kod")
	if code == "" {
		respondError(w, http.StatusUnauthorized, "Access code required")
		return
	}

	doc, err := r.repo.Get(req.Context(), kind, id)
	if err != nil {
		respondStoreError(w, err, "Protocol not found")
		return
	}
	if doc.GetString("kod_dostepu") != code {
		respondError(w, http.StatusForbidden, "Wrong access code")
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

// getShareLink rebuilds the deep link for an existing protocol.
func (r *Router) getShareLink(w http.ResponseWriter, req *http.Request) {
	kind, err := kindFromRequest(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Unknown protocol kind")
		return
	}
	id := mux.Vars(req)["id"]
	doc, err := r.repo.Get(req.Context(), kind, id)
	if err != nil {
		respondStoreError(w, err, "Protocol not found")
		return
	}
	code := doc.GetString("kod_dostepu")
	if code == "" {
		respondError(w, http.StatusConflict, "Protocol has no access code yet")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"kod":        code,
		"share_link": utils.ShareLink(r.cfg.BaseURL, kind.Collection(), id, code),
	})
}
