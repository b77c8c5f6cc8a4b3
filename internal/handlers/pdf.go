package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/marbabud/domownik/internal/protocols"
	"github.com/marbabud/domownik/internal/services/printer"
	"github.com/marbabud/domownik/internal/utils"
)

// downloadProtocolPDF renders a protocol as a downloadable order document.
func (r *Router) downloadProtocolPDF(w http.ResponseWriter, req *http.Request) {
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

	rec, err := protocols.DecodeRecord(kind, doc)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to decode protocol")
		return
	}

	shareLink := ""
	if code := rec.Env().KodDostepu; code != "" {
		shareLink = utils.ShareLink(r.cfg.BaseURL, kind.Collection(), id, code)
	}

	pdfBytes, err := printer.GenerateProtocolPDF(rec, shareLink)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to generate PDF: %v", err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"protokol_%s_%s.pdf\"", kind, id))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdfBytes)))

	w.Write(pdfBytes)
}
