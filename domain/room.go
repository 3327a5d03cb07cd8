package domain

// DefaultRoom is joined implicitly once the username line has been read.
const DefaultRoom = "default"

// RoomName identifies a room. Names are case-sensitive and not validated.
type RoomName string

// RoomInfo is a point-in-time view of one room of the registry.
type RoomInfo struct {
	Name    RoomName `json:"name"`
	Members int      `json:"members"`
}
