package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	showservice "github.com/cinesync/server/internal/service/show"
	"github.com/cinesync/server/internal/service/watch"
	"github.com/cinesync/server/pkg/rest"
)

type loginInput struct {
	Password string `json:"password" validate:"required"`
}

func (c controller) login(w http.ResponseWriter, r *http.Request) {
	var req loginInput
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	token, err := c.authService.Login(req.Password)
	if err != nil {
		c.serviceError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"logged_in": true})
}

func (c controller) me(w http.ResponseWriter, r *http.Request) {
	verification := c.authService.Verify(c.credentialFromRequest(r))

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{
		"authenticated": verification.Authenticated,
		"level":         verification.Level,
	})
}

func (c controller) findRoom(w http.ResponseWriter, r *http.Request) {
	resp, err := c.watchService.FindRoom(r.Context(), chi.URLParam(r, "pass-code"))
	if err != nil {
		c.serviceError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{
		"show_title": resp.ShowTitle,
		"start_time": resp.StartTime.UnixMilli(),
	})
}

type joinRoomInput struct {
	ConnectionId string `json:"connection_id" validate:"required"`
	FriendlyName string `json:"friendly_name" validate:"required,max=32"`
	WithSubtitle bool   `json:"with_subtitle"`
}

func (c controller) joinRoom(w http.ResponseWriter, r *http.Request) {
	var req joinRoomInput
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	resp, err := c.watchService.JoinRoom(r.Context(), watch.JoinRoomParams{
		ConnectionId: req.ConnectionId,
		PassCode:     chi.URLParam(r, "pass-code"),
		FriendlyName: req.FriendlyName,
		Credential:   c.credentialFromRequest(r),
		WithSubtitle: req.WithSubtitle,
	})
	if err != nil {
		c.serviceError(w, r, err)
		return
	}

	out := rest.Envelope{
		"show_title": resp.ShowTitle,
		"start_time": resp.StartTime.UnixMilli(),
		"smart_sync": resp.SmartSync,
	}
	if resp.Subtitles != nil {
		out["subtitles"] = resp.Subtitles
	}

	rest.WriteJSON(w, http.StatusOK, out)
}

func (c controller) roomPreview(w http.ResponseWriter, r *http.Request) {
	state, err := c.watchService.GetPreview(r.Context(), chi.URLParam(r, "pass-code"))
	if err != nil {
		c.serviceError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, state)
}

type addWaitTimeInput struct {
	MinuteAmount int `json:"minute_amount" validate:"required,min=1,max=720"`
}

func (c controller) addWaitTime(w http.ResponseWriter, r *http.Request) {
	var req addWaitTimeInput
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	if err := c.watchService.AddWaitTime(r.Context(), chi.URLParam(r, "pass-code"), req.MinuteAmount); err != nil {
		c.serviceError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"ok": true})
}

func (c controller) startNow(w http.ResponseWriter, r *http.Request) {
	if err := c.watchService.StartNow(r.Context(), chi.URLParam(r, "pass-code")); err != nil {
		c.serviceError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"ok": true})
}

func (c controller) watchList(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, rest.Envelope{
		"rooms": c.watchService.GetWatchList(r.Context()),
	})
}

type createShowInput struct {
	PassCode      string    `json:"pass_code" validate:"required,min=3,max=16"`
	Title         string    `json:"title" validate:"required,max=128"`
	MovieURL      string    `json:"movie_url" validate:"required,url"`
	SubtitleURL   string    `json:"subtitle_url" validate:"omitempty,url"`
	StartTime     time.Time `json:"start_time" validate:"required"`
	SmartSync     bool      `json:"smart_sync"`
	VotingEnabled bool      `json:"voting_enabled"`
}

func (c controller) createShow(w http.ResponseWriter, r *http.Request) {
	var req createShowInput
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	show, err := c.showService.Create(r.Context(), showservice.CreateParams{
		PassCode:      req.PassCode,
		Title:         req.Title,
		MovieURL:      req.MovieURL,
		SubtitleURL:   req.SubtitleURL,
		StartTime:     req.StartTime,
		SmartSync:     req.SmartSync,
		VotingEnabled: req.VotingEnabled,
	})
	if err != nil {
		c.serviceError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.Envelope{"show": show})
}

func (c controller) listShows(w http.ResponseWriter, r *http.Request) {
	shows, err := c.showService.List(r.Context())
	if err != nil {
		c.serviceError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"shows": shows})
}

func (c controller) deleteShow(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "show-id"), 10, 64)
	if err != nil {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": "invalid show id"})
		return
	}

	if err := c.showService.SoftDelete(r.Context(), id); err != nil {
		c.serviceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c controller) resubmitShow(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "show-id"), 10, 64)
	if err != nil {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": "invalid show id"})
		return
	}

	show, err := c.showService.Resubmit(r.Context(), id)
	if err != nil {
		c.serviceError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"show": show})
}
