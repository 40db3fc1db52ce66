package roomhandler

import (
	"context"
	"errors"
	"net/http"

	"buzzergo/internal/services/buzzer"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Rooms is the admin view of the room engine.
type Rooms interface {
	ListRooms() []buzzer.RoomInfo
	DeleteRoom(code string) error
}

// RoundHistory reads archived rounds. It is nil when the archive is off.
type RoundHistory interface {
	ListRounds(ctx context.Context, roomCode string, limit int) ([]buzzer.RoundRecord, error)
}

type Handler struct {
	rooms   Rooms
	history RoundHistory
}

func New(rooms Rooms, history RoundHistory) *Handler {
	return &Handler{rooms: rooms, history: history}
}

func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/", h.hello)
	r.GET("/rooms", h.list)
	r.DELETE("/rooms/:code", h.delete)
	r.GET("/rooms/:code/rounds", h.rounds)
}

// @Summary		Health check
// @Tags			Health
// @Success		201	{string}	string
// @Router			/ [get]
func (h *Handler) hello(c *gin.Context) {
	c.String(http.StatusCreated, "Hello from backend")
}

// @Summary		List rooms
// @Description	Returns every live room with its player count and whether a round is running.
// @Tags			Rooms
// @Success		200	{array}	buzzer.RoomInfo
// @Router			/rooms [get]
func (h *Handler) list(c *gin.Context) {
	c.JSON(http.StatusOK, h.rooms.ListRooms())
}

// @Summary		Delete a room
// @Description	Closes the room for every connected client.
// @Tags			Rooms
// @Param			code	path	string	true	"Room code"	default(AB12CD)
// @Success		204
// @Failure		404	{object}	ErrorResponse
// @Router			/rooms/{code} [delete]
func (h *Handler) delete(c *gin.Context) {
	code := c.Param("code")
	if err := h.rooms.DeleteRoom(code); err != nil {
		if errors.Is(err, buzzer.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	zap.L().Info("admin.room_deleted", zap.String("room", code))
	c.Status(http.StatusNoContent)
}

// @Summary		List archived rounds
// @Description	Finished rounds of a room, newest first.
// @Tags			Rooms
// @Param			code	path		string	true	"Room code"		default(AB12CD)
// @Param			limit	query		int		false	"Max results"	minimum(0)	maximum(100)	default(20)
// @Success		200		{array}		RoundResponse
// @Failure		400		{object}	ErrorResponse
// @Failure		503		{object}	ErrorResponse
// @Router			/rooms/{code}/rounds [get]
func (h *Handler) rounds(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "round archive disabled"})
		return
	}
	var q ListRoundsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	recs, err := h.history.ListRounds(c.Request.Context(), c.Param("code"), q.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	out := make([]RoundResponse, 0, len(recs))
	for _, rec := range recs {
		order := make([]BuzzEntryResponse, 0, len(rec.BuzzOrder))
		for _, b := range rec.BuzzOrder {
			order = append(order, BuzzEntryResponse{Name: b.Name})
		}
		out = append(out, RoundResponse{
			RoomCode:  rec.RoomCode,
			Round:     rec.Round,
			BuzzOrder: order,
			ClosedAt:  rec.ClosedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}
