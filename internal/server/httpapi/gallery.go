package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/lentik/internal/server/models"
	"github.com/julienschmidt/httprouter"
)

type addGalleryItemRequest struct {
	MediaType string  `json:"media_type"`
	Caption   *string `json:"caption"`
}

// galleryItemResponse never exposes the storage key, only presigned URLs.
type galleryItemResponse struct {
	ID         string    `json:"id"`
	FamilyID   string    `json:"family_id"`
	UploadedBy string    `json:"uploaded_by"`
	MediaType  string    `json:"media_type"`
	Caption    *string   `json:"caption"`
	CreatedAt  time.Time `json:"created_at"`
	URL        string    `json:"url,omitempty"`
}

type addGalleryItemResponse struct {
	Item      galleryItemResponse `json:"item"`
	UploadURL string              `json:"upload_url"`
}

func toGalleryItemResponse(it *models.GalleryItem, url string) galleryItemResponse {
	return galleryItemResponse{
		ID:         it.ID,
		FamilyID:   it.FamilyID,
		UploadedBy: it.UploadedBy,
		MediaType:  it.MediaType,
		Caption:    it.Caption,
		CreatedAt:  it.CreatedAt,
		URL:        url,
	}
}

func (a *API) addGalleryItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params, user *models.User) error {
	familyID, err := pathID(ps, "family_id")
	if err != nil {
		return err
	}
	var req addGalleryItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	up, err := a.gallery.AddItem(r.Context(), user.ID, familyID, req.MediaType, req.Caption)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, addGalleryItemResponse{
		Item:      toGalleryItemResponse(up.Item, ""),
		UploadURL: up.UploadURL,
	})
	return nil
}

func (a *API) listGallery(w http.ResponseWriter, r *http.Request, ps httprouter.Params, user *models.User) error {
	familyID, err := pathID(ps, "family_id")
	if err != nil {
		return err
	}
	entries, err := a.gallery.ListItems(r.Context(), user.ID, familyID)
	if err != nil {
		return err
	}
	out := make([]galleryItemResponse, 0, len(entries))
	for i := range entries {
		out = append(out, toGalleryItemResponse(&entries[i].Item, entries[i].DownloadURL))
	}
	writeJSON(w, http.StatusOK, out)
	return nil
}

func (a *API) deleteGalleryItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params, user *models.User) error {
	familyID, err := pathID(ps, "family_id")
	if err != nil {
		return err
	}
	itemID, err := pathID(ps, "item_id")
	if err != nil {
		return err
	}
	if err := a.gallery.DeleteItem(r.Context(), user.ID, familyID, itemID); err != nil {
		return err
	}
	noContent(w)
	return nil
}
