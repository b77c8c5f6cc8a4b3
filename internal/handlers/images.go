package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/marbabud/domownik/internal/blobstore"
	"github.com/marbabud/domownik/internal/protocols"
	"github.com/marbabud/domownik/internal/store"
	"github.com/marbabud/domownik/internal/utils"
)

// Photos are phone camera uploads; anything bigger than this is a mistake.
const maxImageBytes = 15 << 20

// uploadImage attaches a photo to a protocol. Bytes go to the blob store;
// the document keeps only the metadata entry in its zdjecia list.
func (r *Router) uploadImage(w http.ResponseWriter, req *http.Request) {
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

	req.Body = http.MaxBytesReader(w, req.Body, maxImageBytes)
	if err := req.ParseMultipartForm(maxImageBytes); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart payload")
		return
	}
	file, header, err := req.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read upload")
		return
	}

	mime := header.Header.Get("Content-Type")
	if mime == "" {
		mime = http.DetectContentType(data)
	}

	imageID := utils.NewDocumentID()
	blobKey := blobstore.ImageKey(kind.Collection(), id, imageID)
	if err := r.blobs.Put(blobKey, data); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to store image")
		return
	}

	now := time.Now().UTC()
	meta := protocols.ImageMeta{
		Name:    header.Filename,
		BlobKey: blobKey,
		Size:    int64(len(data)),
		Mime:    mime,
		AddedAt: &now,
	}

	images := appendImageMeta(doc["zdjecia"], meta)
	if err := r.repo.UpdateImages(req.Context(), kind, id, images); err != nil {
		// Roll the blob back so the store and documents stay consistent
		_ = r.blobs.Delete(blobKey)
		respondStoreError(w, err, "Protocol not found")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"image_id": imageID,
		"meta":     meta,
	})
}

// getImage streams stored photo bytes.
func (r *Router) getImage(w http.ResponseWriter, req *http.Request) {
	kind, err := kindFromRequest(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Unknown protocol kind")
		return
	}
	vars := mux.Vars(req)
	id, imageID := vars["id"], vars["imageId"]

	doc, err := r.repo.Get(req.Context(), kind, id)
	if err != nil {
		respondStoreError(w, err, "Protocol not found")
		return
	}

	blobKey := blobstore.ImageKey(kind.Collection(), id, imageID)
	meta := findImageMeta(doc["zdjecia"], blobKey)
	if meta == nil {
		respondError(w, http.StatusNotFound, "Image not found")
		return
	}

	data, err := r.blobs.Get(blobKey)
	if err != nil {
		respondError(w, http.StatusNotFound, "Image bytes missing")
		return
	}

	if meta.Mime != "" {
		w.Header().Set("Content-Type", meta.Mime)
	}
	w.Write(data)
}

// deleteImage removes a photo and its metadata entry.
func (r *Router) deleteImage(w http.ResponseWriter, req *http.Request) {
	kind, err := kindFromRequest(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Unknown protocol kind")
		return
	}
	vars := mux.Vars(req)
	id, imageID := vars["id"], vars["imageId"]

	doc, err := r.repo.Get(req.Context(), kind, id)
	if err != nil {
		respondStoreError(w, err, "Protocol not found")
		return
	}

	blobKey := blobstore.ImageKey(kind.Collection(), id, imageID)
	images, removed := removeImageMeta(doc["zdjecia"], blobKey)
	if !removed {
		respondError(w, http.StatusNotFound, "Image not found")
		return
	}

	if err := r.repo.UpdateImages(req.Context(), kind, id, images); err != nil {
		respondStoreError(w, err, "Protocol not found")
		return
	}
	_ = r.blobs.Delete(blobKey)

	respondJSON(w, http.StatusOK, map[string]string{"message": "Image deleted"})
}

// decodeImageList converts the raw zdjecia document value into typed metadata.
func decodeImageList(raw interface{}) []protocols.ImageMeta {
	list, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	out := make([]protocols.ImageMeta, 0, len(list))
	for _, item := range list {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		meta := protocols.ImageMeta{
			Name:    store.Doc(entry).GetString("name"),
			BlobKey: store.Doc(entry).GetString("blob_key"),
			Mime:    store.Doc(entry).GetString("mime"),
		}
		if size, ok := entry["size"].(float64); ok {
			meta.Size = int64(size)
		}
		if added := store.Doc(entry).GetString("added_at"); added != "" {
			if t, err := time.Parse(time.RFC3339Nano, added); err == nil {
				meta.AddedAt = &t
			}
		}
		out = append(out, meta)
	}
	return out
}

func appendImageMeta(raw interface{}, meta protocols.ImageMeta) []protocols.ImageMeta {
	return append(decodeImageList(raw), meta)
}

func findImageMeta(raw interface{}, blobKey string) *protocols.ImageMeta {
	for _, meta := range decodeImageList(raw) {
		if meta.BlobKey == blobKey {
			return &meta
		}
	}
	return nil
}

func removeImageMeta(raw interface{}, blobKey string) ([]protocols.ImageMeta, bool) {
	images := decodeImageList(raw)
	out := make([]protocols.ImageMeta, 0, len(images))
	removed := false
	for _, meta := range images {
		if meta.BlobKey == blobKey {
			removed = true
			continue
		}
		out = append(out, meta)
	}
	return out, removed
}
