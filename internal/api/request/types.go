package request

// CreateRoomRequest is the request body for creating a room
type CreateRoomRequest struct {
	Username string `json:"username"`
	Mode     string `json:"mode"`
}

// JoinRoomRequest is the request body for joining a room
type JoinRoomRequest struct {
	Username string `json:"username"`
}
