package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/lentik/internal/common"
	"github.com/dmitrijs2005/lentik/internal/server/models"
	"github.com/julienschmidt/httprouter"
)

type createChatRequest struct {
	Name string `json:"name"`
}

type sendMessageRequest struct {
	Text      string  `json:"text"`
	ReplyToID *string `json:"reply_to_id"`
}

type editMessageRequest struct {
	Text string `json:"text"`
}

// chatPath extracts the family and chat ids shared by every chat route.
func chatPath(ps httprouter.Params) (familyID, chatID string, err error) {
	if familyID, err = pathID(ps, "family_id"); err != nil {
		return "", "", err
	}
	if chatID, err = pathID(ps, "chat_id"); err != nil {
		return "", "", err
	}
	return familyID, chatID, nil
}

func (a *API) listChats(w http.ResponseWriter, r *http.Request, ps httprouter.Params, user *models.User) error {
	familyID, err := pathID(ps, "family_id")
	if err != nil {
		return err
	}
	chats, err := a.chats.ListChats(r.Context(), user.ID, familyID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, orEmpty(chats))
	return nil
}

func (a *API) createChat(w http.ResponseWriter, r *http.Request, ps httprouter.Params, user *models.User) error {
	familyID, err := pathID(ps, "family_id")
	if err != nil {
		return err
	}
	var req createChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	chat, err := a.chats.CreateChat(r.Context(), user.ID, familyID, req.Name)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, chat)
	return nil
}

func (a *API) deleteChat(w http.ResponseWriter, r *http.Request, ps httprouter.Params, user *models.User) error {
	familyID, chatID, err := chatPath(ps)
	if err != nil {
		return err
	}
	if err := a.chats.DeleteChat(r.Context(), user.ID, familyID, chatID); err != nil {
		return err
	}
	noContent(w)
	return nil
}

func (a *API) listMessages(w http.ResponseWriter, r *http.Request, ps httprouter.Params, user *models.User) error {
	familyID, chatID, err := chatPath(ps)
	if err != nil {
		return err
	}
	q := r.URL.Query()

	limit := 0
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 1 {
			return fmt.Errorf("%w: limit must be a positive integer", common.ErrorValidation)
		}
	}
	beforeID := q.Get("before_id")
	if beforeID != "" {
		if _, err := bodyID(beforeID, "before_id"); err != nil {
			return err
		}
	}

	msgs, err := a.chats.ListMessages(r.Context(), user.ID, familyID, chatID, beforeID, limit)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, orEmpty(msgs))
	return nil
}

func (a *API) sendMessage(w http.ResponseWriter, r *http.Request, ps httprouter.Params, user *models.User) error {
	familyID, chatID, err := chatPath(ps)
	if err != nil {
		return err
	}
	var req sendMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if req.ReplyToID != nil {
		if _, err := bodyID(*req.ReplyToID, "reply_to_id"); err != nil {
			return err
		}
	}
	msg, err := a.chats.SendMessage(r.Context(), user.ID, familyID, chatID, req.Text, req.ReplyToID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, msg)
	return nil
}

func (a *API) editMessage(w http.ResponseWriter, r *http.Request, ps httprouter.Params, user *models.User) error {
	familyID, chatID, err := chatPath(ps)
	if err != nil {
		return err
	}
	messageID, err := pathID(ps, "message_id")
	if err != nil {
		return err
	}
	var req editMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	msg, err := a.chats.EditMessage(r.Context(), user.ID, familyID, chatID, messageID, req.Text)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, msg)
	return nil
}

func (a *API) deleteMessage(w http.ResponseWriter, r *http.Request, ps httprouter.Params, user *models.User) error {
	familyID, chatID, err := chatPath(ps)
	if err != nil {
		return err
	}
	messageID, err := pathID(ps, "message_id")
	if err != nil {
		return err
	}
	if err := a.chats.DeleteMessage(r.Context(), user.ID, familyID, chatID, messageID); err != nil {
		return err
	}
	noContent(w)
	return nil
}
