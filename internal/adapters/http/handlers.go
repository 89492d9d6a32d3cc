package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dkeye/Cinema/internal/app"
	"github.com/dkeye/Cinema/internal/core"
	"github.com/dkeye/Cinema/internal/domain"
)

// RoomAPI is the request/response surface over core state. Errors here
// are loud and structured; only the websocket events fail silent.
type RoomAPI struct {
	Engine *app.Engine
}

func (a *RoomAPI) caller(c *gin.Context) domain.User {
	return a.Engine.Directory.GetOrCreate(c.GetString("client_token"))
}

func (a *RoomAPI) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, core.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, core.ErrValidation),
		errors.Is(err, domain.ErrNameEmpty),
		errors.Is(err, domain.ErrNameTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected error"})
	}
}

type createRoomRequest struct {
	Name         string `json:"name" binding:"required"`
	IsPrivate    bool   `json:"is_private"`
	AccessSecret string `json:"access_secret"`
	VideoRef     string `json:"video_ref"`
}

// roomView is the API shape of one room: descriptive fields plus the
// live counters a lobby needs.
type roomView struct {
	Room             domain.Room `json:"room"`
	ParticipantCount int         `json:"participant_count"`
	HasActiveSharer  bool        `json:"has_active_sharer"`
}

func viewOf(state *core.RoomState) roomView {
	return roomView{
		Room:             state.Room(),
		ParticipantCount: state.ParticipantCount(),
		HasActiveSharer:  state.SharerSnapshot() != nil,
	}
}

func (a *RoomAPI) createRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid fields"})
		return
	}
	user := a.caller(c)
	state, err := a.Engine.CreateRoom(app.RoomSpec{
		Name:         req.Name,
		HostID:       user.ID,
		HostName:     user.DisplayName,
		IsPrivate:    req.IsPrivate,
		AccessSecret: req.AccessSecret,
		VideoRef:     req.VideoRef,
	})
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, viewOf(state))
}

func (a *RoomAPI) getRoom(c *gin.Context) {
	user := a.caller(c)
	state, err := a.Engine.GetRoom(domain.RoomID(c.Param("id")), user.ID, c.Query("secret"))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(state))
}

func (a *RoomAPI) listRooms(c *gin.Context) {
	user := a.caller(c)
	states := a.Engine.VisibleRooms(user.ID)
	out := make([]roomView, 0, len(states))
	for _, state := range states {
		out = append(out, viewOf(state))
	}
	c.JSON(http.StatusOK, gin.H{"rooms": out, "count": len(out)})
}

func (a *RoomAPI) deleteRoom(c *gin.Context) {
	user := a.caller(c)
	if err := a.Engine.DeleteRoom(domain.RoomID(c.Param("id")), user.ID); err != nil {
		a.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *RoomAPI) getMessages(c *gin.Context) {
	user := a.caller(c)
	limit, _ := strconv.Atoi(c.Query("limit"))
	msgs, err := a.Engine.RecentMessages(domain.RoomID(c.Param("id")), user.ID, c.Query("secret"), limit)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs, "count": len(msgs)})
}

func (a *RoomAPI) whoAmI(c *gin.Context) {
	user := a.caller(c)
	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"rooms": a.Engine.Directory.Memberships(user.ID),
	})
}

type profileRequest struct {
	DisplayName string `json:"display_name"`
	AvatarRef   string `json:"avatar_ref"`
}

func (a *RoomAPI) updateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid fields"})
		return
	}
	user, err := a.Engine.Directory.UpdateProfile(c.GetString("client_token"), req.DisplayName, req.AvatarRef)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
