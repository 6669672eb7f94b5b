package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/wordbattle/internal/api/request"
	"github.com/mcoot/wordbattle/internal/api/response"
	"github.com/mcoot/wordbattle/internal/model"
	"github.com/mcoot/wordbattle/internal/services/room"
)

// RoomHandler handles room-related endpoints
type RoomHandler struct {
	roomController *room.Controller
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(roomController *room.Controller) *RoomHandler {
	return &RoomHandler{roomController: roomController}
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	mode := model.GameMode(req.Mode)
	if mode == "" {
		mode = model.ModeDuel
	}

	created, err := h.roomController.CreateRoom(r.Context(), req.Username, mode)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.RoomFromModel(created))
}

// Get handles GET /api/v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	found, err := h.roomController.GetRoom(r.Context(), roomCode(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(found))
}

// Join handles POST /api/v1/rooms/{code}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req request.JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	joined, err := h.roomController.JoinRoom(r.Context(), roomCode(r), req.Username)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(joined))
}

// Delete handles DELETE /api/v1/rooms/{code}
func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.roomController.DeleteRoom(r.Context(), roomCode(r)); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Stats handles GET /api/v1/rooms/stats
func (h *RoomHandler) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.roomController.Counts(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomCountsFromModel(counts))
}

func roomCode(r *http.Request) model.RoomCode {
	return room.NormalizeCode(mux.Vars(r)["code"])
}
