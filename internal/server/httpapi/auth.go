package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/lentik/internal/server/models"
	"github.com/dmitrijs2005/lentik/internal/server/realtime"
	"github.com/julienschmidt/httprouter"
)

type loginRequest struct {
	UserName string `json:"username"`
	Pin      string `json:"pin"`
}

type loginResponse struct {
	UserID string `json:"user_id"`
}

type inviteRegistrationRequest struct {
	Token       string `json:"token"`
	DisplayName string `json:"display_name"`
	Pin         string `json:"pin"`
}

type inviteRegistrationResponse struct {
	UserID   string `json:"user_id"`
	FamilyID string `json:"family_id"`
}

type meResponse struct {
	ID       string `json:"id"`
	UserName string `json:"username"`
}

func (a *API) login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) error {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	res, err := a.users.Login(r.Context(), req.UserName, req.Pin)
	if err != nil {
		return err
	}
	a.setCredentialCookie(w, res.Credential)
	writeJSON(w, http.StatusOK, loginResponse{UserID: res.User.ID})
	return nil
}

func (a *API) logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) error {
	credential := realtime.CredentialFromRequest(r, a.cookie.Name)
	if err := a.users.Logout(r.Context(), credential); err != nil {
		return err
	}
	a.clearCredentialCookie(w)
	noContent(w)
	return nil
}

func (a *API) registerFromInvite(w http.ResponseWriter, r *http.Request, _ httprouter.Params) error {
	var req inviteRegistrationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	res, err := a.users.RegisterFromInvite(r.Context(), req.Token, req.DisplayName, req.Pin)
	if err != nil {
		return err
	}
	a.setCredentialCookie(w, res.Credential)
	writeJSON(w, http.StatusCreated, inviteRegistrationResponse{UserID: res.User.ID, FamilyID: res.FamilyID})
	return nil
}

func (a *API) me(w http.ResponseWriter, _ *http.Request, _ httprouter.Params, user *models.User) error {
	writeJSON(w, http.StatusOK, meResponse{ID: user.ID, UserName: user.UserName})
	return nil
}

func (a *API) setCredentialCookie(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookie.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(a.cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   a.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *API) clearCredentialCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
