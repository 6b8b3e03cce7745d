package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/lentik/internal/server/models"
	"github.com/julienschmidt/httprouter"
)

type createChannelRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type createPostRequest struct {
	Text      string   `json:"text"`
	MediaURLs []string `json:"media_urls"`
}

func (a *API) listChannels(w http.ResponseWriter, r *http.Request, ps httprouter.Params, user *models.User) error {
	familyID, err := pathID(ps, "family_id")
	if err != nil {
		return err
	}
	chs, err := a.channels.ListChannels(r.Context(), user.ID, familyID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, orEmpty(chs))
	return nil
}

func (a *API) createChannel(w http.ResponseWriter, r *http.Request, ps httprouter.Params, user *models.User) error {
	familyID, err := pathID(ps, "family_id")
	if err != nil {
		return err
	}
	var req createChannelRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	ch, err := a.channels.CreateChannel(r.Context(), user.ID, familyID, req.Name, req.Description)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, ch)
	return nil
}

// listPosts pages with ?limit= and ?offset=, newest first.
func (a *API) listPosts(w http.ResponseWriter, r *http.Request, ps httprouter.Params, user *models.User) error {
	familyID, err := pathID(ps, "family_id")
	if err != nil {
		return err
	}
	channelID, err := pathID(ps, "channel_id")
	if err != nil {
		return err
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		return err
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		return err
	}
	posts, err := a.channels.ListPosts(r.Context(), user.ID, familyID, channelID, limit, offset)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, orEmpty(posts))
	return nil
}

func (a *API) createPost(w http.ResponseWriter, r *http.Request, ps httprouter.Params, user *models.User) error {
	familyID, err := pathID(ps, "family_id")
	if err != nil {
		return err
	}
	channelID, err := pathID(ps, "channel_id")
	if err != nil {
		return err
	}
	var req createPostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	p, err := a.channels.CreatePost(r.Context(), user.ID, familyID, channelID, req.Text, req.MediaURLs)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, p)
	return nil
}
