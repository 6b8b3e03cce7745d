package httpapi

import (
	"net/http"
	"net/url"
	"time"

	"github.com/dmitrijs2005/lentik/internal/server/models"
	"github.com/julienschmidt/httprouter"
)

type createFamilyRequest struct {
	Name string `json:"name"`
}

type familyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type createInviteRequest struct {
	FamilyID       string `json:"family_id"`
	ExpiresInHours int    `json:"expires_in_hours"`
}

type createInviteResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	JoinURL   string    `json:"join_url"`
}

type acceptInviteRequest struct {
	Token string `json:"token"`
}

type acceptInviteResponse struct {
	FamilyID string `json:"family_id"`
}

func (a *API) createFamily(w http.ResponseWriter, r *http.Request, _ httprouter.Params, user *models.User) error {
	var req createFamilyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	f, err := a.families.CreateFamily(r.Context(), user.ID, req.Name)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, familyResponse{ID: f.ID, Name: f.Name, CreatedAt: f.CreatedAt})
	return nil
}

func (a *API) createInvite(w http.ResponseWriter, r *http.Request, _ httprouter.Params, user *models.User) error {
	var req createInviteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	familyID, err := bodyID(req.FamilyID, "family_id")
	if err != nil {
		return err
	}
	inv, err := a.families.CreateInvite(r.Context(), user.ID, familyID, req.ExpiresInHours)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, createInviteResponse{
		Token:     inv.Token,
		ExpiresAt: inv.ExpiresAt,
		JoinURL:   joinURL(r, inv.Token),
	})
	return nil
}

func (a *API) acceptInvite(w http.ResponseWriter, r *http.Request, _ httprouter.Params, user *models.User) error {
	var req acceptInviteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	familyID, err := a.families.AcceptInvite(r.Context(), user.ID, req.Token)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, acceptInviteResponse{FamilyID: familyID})
	return nil
}

func (a *API) listMembers(w http.ResponseWriter, r *http.Request, ps httprouter.Params, user *models.User) error {
	familyID, err := pathID(ps, "family_id")
	if err != nil {
		return err
	}
	members, err := a.families.ListMembers(r.Context(), user.ID, familyID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, orEmpty(members))
	return nil
}

func (a *API) kickMember(w http.ResponseWriter, r *http.Request, ps httprouter.Params, user *models.User) error {
	familyID, err := pathID(ps, "family_id")
	if err != nil {
		return err
	}
	memberID, err := pathID(ps, "user_id")
	if err != nil {
		return err
	}
	if err := a.families.KickMember(r.Context(), user.ID, familyID, memberID); err != nil {
		return err
	}
	noContent(w)
	return nil
}

// joinURL points at the web client's join page on the host that served r.
func joinURL(r *http.Request, token string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	u := url.URL{Scheme: scheme, Host: r.Host, Path: "/join", RawQuery: url.Values{"token": {token}}.Encode()}
	return u.String()
}
