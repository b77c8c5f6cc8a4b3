package handlers

import (
	"net/http"

	"github.com/marbabud/domownik/internal/protocols"
	"github.com/marbabud/domownik/internal/store"
)

// listFolders returns all records grouped into virtual client folders.
func (r *Router) listFolders(w http.ResponseWriter, req *http.Request) {
	byKind := make(map[protocols.Kind][]store.Doc, 3)
	for _, kind := range protocols.Kinds() {
		docs, err := r.repo.ListAll(req.Context(), kind)
		if err != nil {
			respondStoreError(w, err, "Protocols not found")
			return
		}
		byKind[kind] = docs
	}
	respondJSON(w, http.StatusOK, protocols.GroupIntoFolders(byKind))
}

// dashboard returns per-collection counts plus recent entries.
func (r *Router) dashboard(w http.ResponseWriter, req *http.Request) {
	counts := make(map[string]int, 4)
	recent := make(map[string][]store.Doc, 3)
	for _, kind := range protocols.Kinds() {
		docs, err := r.repo.ListAll(req.Context(), kind)
		if err != nil {
			respondStoreError(w, err, "Protocols not found")
			return
		}
		counts[kind.Collection()] = len(docs)
		if len(docs) > 10 {
			docs = docs[:10]
		}
		recent[kind.Collection()] = docs
	}

	drafts, err := r.repo.ListDrafts(req.Context(), "")
	if err != nil {
		respondStoreError(w, err, "Drafts not found")
		return
	}
	counts[protocols.DraftCollection] = len(drafts)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"counts": counts,
		"recent": recent,
	})
}
