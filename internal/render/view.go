package render

import (
	"github.com/muurk/relaydeck/internal/state"
)

// Cell is the rendered control for a single relay: its display label and the
// visual on indicator. Cells are only ever written through RenderAll and
// RenderChanged, so the retained tree is always a projection of the view
// model at the time of the last render call.
type Cell struct {
	Label string
	On    bool
}

// Card is the rendered surface for one device: a title line and one cell per
// relay.
type Card struct {
	DeviceID string
	Title    string
	Address  string
	Cells    []Cell
}

// Room is a section of cards grouped by room name, in first-seen order of
// rooms in the device listing.
type Room struct {
	Name  string
	Cards []*Card
}

// View is the retained render tree: the terminal counterpart of the DOM the
// browser client kept. A full rebuild regenerates everything; the
// incremental path patches individual cells in place so a poll or push that
// changes one relay never tears the rest of the layout (or an in-progress
// rename edit).
type View struct {
	Rooms []*Room
	Empty bool

	cards map[string]*Card
}

// NewView creates an empty view showing the placeholder
func NewView() *View {
	return &View{Empty: true, cards: make(map[string]*Card)}
}

// RenderAll rebuilds the whole tree from the view model. Devices are grouped
// by room name; a device whose room has no bucket yet starts a new one, so
// room order is first-seen order of the device listing, not alphabetical.
// An empty device set renders as a placeholder with zero room sections.
func (v *View) RenderAll(vm *state.ViewModel) {
	devices := vm.Devices()

	v.Rooms = v.Rooms[:0]
	v.cards = make(map[string]*Card, len(devices))
	v.Empty = len(devices) == 0

	buckets := make(map[string]*Room)
	for i := range devices {
		d := &devices[i]

		room, ok := buckets[d.Room]
		if !ok {
			room = &Room{Name: d.Room}
			buckets[d.Room] = room
			v.Rooms = append(v.Rooms, room)
		}

		card := &Card{
			DeviceID: d.ID(),
			Title:    d.Name,
			Address:  d.IP,
			Cells:    make([]Cell, d.NumRelays),
		}
		for idx := 0; idx < d.NumRelays; idx++ {
			on, _ := vm.RelayState(d.ID(), idx)
			card.Cells[idx] = Cell{Label: d.RelayLabel(idx), On: on}
		}

		room.Cards = append(room.Cards, card)
		v.cards[d.ID()] = card
	}
}

// RenderChanged patches only the cells named in keys, refreshing their on
// indicator and label from the view model. Keys whose device is not in the
// rendered tree, or whose index is out of range, are skipped. Returns the
// keys actually patched.
func (v *View) RenderChanged(vm *state.ViewModel, keys []state.Key) []state.Key {
	var patched []state.Key
	for _, key := range keys {
		card, ok := v.cards[key.DeviceID]
		if !ok || key.Relay < 0 || key.Relay >= len(card.Cells) {
			continue
		}
		on, _ := vm.RelayState(key.DeviceID, key.Relay)
		card.Cells[key.Relay].On = on
		if device, ok := vm.Device(key.DeviceID); ok {
			card.Cells[key.Relay].Label = device.RelayLabel(key.Relay)
		}
		patched = append(patched, key)
	}
	return patched
}

// Card returns the rendered card for a device, if present
func (v *View) Card(id string) (*Card, bool) {
	c, ok := v.cards[id]
	return c, ok
}
