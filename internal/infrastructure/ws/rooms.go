package ws

// RoomTracker maps a room id to the set of connections joined to it.
// Rooms are created on first join; any room id is treated as valid.
//
// Not goroutine-safe: the Core event loop is the only caller.
type RoomTracker struct {
	rooms map[string]map[*Client]struct{} // roomID → member set
}

func NewRoomTracker() *RoomTracker {
	return &RoomTracker{
		rooms: make(map[string]map[*Client]struct{}),
	}
}

// Join adds cl to the room's member set. Joining twice is a no-op.
func (rt *RoomTracker) Join(roomID string, cl *Client) {
	members, ok := rt.rooms[roomID]
	if !ok {
		members = make(map[*Client]struct{})
		rt.rooms[roomID] = members
	}
	members[cl] = struct{}{}
}

// MembersOf returns the current member set, or nil for an unknown room.
// Callers must not mutate the returned map.
func (rt *RoomTracker) MembersOf(roomID string) map[*Client]struct{} {
	return rt.rooms[roomID]
}

// Remove drops cl from every room it joined, deleting rooms that become
// empty.
func (rt *RoomTracker) Remove(cl *Client) {
	for roomID, members := range rt.rooms {
		if _, ok := members[cl]; ok {
			delete(members, cl)
			if len(members) == 0 {
				delete(rt.rooms, roomID)
			}
		}
	}
}
