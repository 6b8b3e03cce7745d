package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/lentik/internal/common"
	"github.com/dmitrijs2005/lentik/internal/server/models"
	"github.com/dmitrijs2005/lentik/internal/server/services"
	"github.com/julienschmidt/httprouter"
)

type createEventRequest struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	Color       string     `json:"color"`
}

type updateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	Color       *string    `json:"color"`
}

func queryInt(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", common.ErrorValidation, name)
	}
	return n, nil
}

func (a *API) listEvents(w http.ResponseWriter, r *http.Request, ps httprouter.Params, user *models.User) error {
	familyID, err := pathID(ps, "family_id")
	if err != nil {
		return err
	}
	year, err := queryInt(r, "year")
	if err != nil {
		return err
	}
	month, err := queryInt(r, "month")
	if err != nil {
		return err
	}
	evs, err := a.calendar.ListEvents(r.Context(), user.ID, familyID, year, month)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, orEmpty(evs))
	return nil
}

func (a *API) createEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params, user *models.User) error {
	familyID, err := pathID(ps, "family_id")
	if err != nil {
		return err
	}
	var req createEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	ev, err := a.calendar.CreateEvent(r.Context(), user.ID, familyID, services.NewCalendarEvent{
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Color:       req.Color,
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, ev)
	return nil
}

func (a *API) updateEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params, user *models.User) error {
	familyID, err := pathID(ps, "family_id")
	if err != nil {
		return err
	}
	eventID, err := pathID(ps, "event_id")
	if err != nil {
		return err
	}
	var req updateEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	ev, err := a.calendar.UpdateEvent(r.Context(), user.ID, familyID, eventID, services.UpdateCalendarEvent{
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Color:       req.Color,
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, ev)
	return nil
}

func (a *API) deleteEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params, user *models.User) error {
	familyID, err := pathID(ps, "family_id")
	if err != nil {
		return err
	}
	eventID, err := pathID(ps, "event_id")
	if err != nil {
		return err
	}
	if err := a.calendar.DeleteEvent(r.Context(), user.ID, familyID, eventID); err != nil {
		return err
	}
	noContent(w)
	return nil
}
