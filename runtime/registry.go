package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"log/slog"
	"sort"
	"sync"

	"github.com/samber/lo"
)

type Set map[contract.Member]struct{}

// Registry maps room names to the sessions currently inside them.
// Every mutation happens under a single mutex covering the whole map.
// Sends never happen under that mutex: Broadcast copies the membership and
// releases the lock first, so a stalled peer cannot block joins or leaves.
type Registry struct {
	mu          sync.Mutex
	log         *slog.Logger
	roomMembers map[domain.RoomName]Set              // map room to sessions
	location    map[contract.Member]domain.RoomName // map session to its single room
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		log:         log,
		roomMembers: make(map[domain.RoomName]Set),
		location:    make(map[contract.Member]domain.RoomName),
	}
}

// Join moves member out of its current room (deleting that room if it becomes empty)
// and into room, creating it on the fly. The member always receives a confirmation,
// even when it was already in room.
func (r *Registry) Join(member contract.Member, room domain.RoomName) {
	r.mu.Lock()
	previous, moved := r.location[member]
	r.remove(member)
	if _, ok := r.roomMembers[room]; !ok {
		r.roomMembers[room] = make(Set)
	}
	r.roomMembers[room][member] = struct{}{}
	r.location[member] = room
	r.mu.Unlock()

	r.log.Info("Session joined room", "session", member.ID(), "room", room, "from", previous, "moved", moved)
	confirmation := domain.Envelope{Kind: domain.JoinNotice, Room: room}
	if err := member.Send(confirmation.Line()); err != nil {
		r.log.Debug("Join confirmation not delivered", "session", member.ID(), "error", err)
	}
}

// Leave removes member from its room. Calling it for an unknown member is a no-op.
func (r *Registry) Leave(member contract.Member) {
	r.mu.Lock()
	room, ok := r.location[member]
	r.remove(member)
	r.mu.Unlock()

	if ok {
		r.log.Info("Session left room", "session", member.ID(), "room", room)
	}
}

// remove must be called with mu held.
func (r *Registry) remove(member contract.Member) {
	room, ok := r.location[member]
	if !ok {
		return
	}
	delete(r.location, member)
	if members, ok := r.roomMembers[room]; ok {
		delete(members, member)

		// If no one is left in the room, remove the room entry entirely
		if len(members) == 0 {
			delete(r.roomMembers, room)
		}
	}
}

// Broadcast sends text to every member of room except sender.
// A nil sender reaches every member. An unknown room is silently ignored.
func (r *Registry) Broadcast(room domain.RoomName, sender contract.Member, text string, isFileNotice bool) {
	recipients := r.snapshot(room, sender)
	if len(recipients) == 0 {
		return
	}

	envelope := domain.Envelope{Kind: domain.Chat, Room: room, Text: text}
	if isFileNotice {
		envelope.Kind = domain.FileNotice
	}
	line := envelope.Line()
	for _, member := range recipients {
		if err := member.Send(line); err != nil {
			// The recipient's own read loop notices the broken transport and cleans up.
			r.log.Debug("Broadcast not delivered", "session", member.ID(), "room", room, "error", err)
		}
	}
	r.log.Debug("Broadcast delivered", "room", room, "kind", envelope.Kind, "recipients", len(recipients))
}

func (r *Registry) snapshot(room domain.RoomName, sender contract.Member) []contract.Member {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.roomMembers[room]
	if !ok {
		return nil
	}
	return lo.Filter(lo.Keys(members), func(member contract.Member, _ int) bool {
		return member != sender
	})
}

// RoomOf returns the room member is currently in.
func (r *Registry) RoomOf(member contract.Member) (domain.RoomName, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.location[member]
	return room, ok
}

// Rooms lists every non-empty room, sorted by name.
func (r *Registry) Rooms() []domain.RoomInfo {
	r.mu.Lock()
	rooms := lo.MapToSlice(r.roomMembers, func(name domain.RoomName, members Set) domain.RoomInfo {
		return domain.RoomInfo{Name: name, Members: len(members)}
	})
	r.mu.Unlock()

	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Name < rooms[j].Name })
	return rooms
}
