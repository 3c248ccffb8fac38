package bot

import (
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

// componentEvent is one collected select-menu interaction.
type componentEvent struct {
	ActorID     string
	Value       string
	Interaction *discordgo.InteractionCreate
}

type window struct {
	ownerID string
	ch      chan componentEvent
}

// collectors routes component interactions to the single window armed for
// their custom ID. Each window accepts exactly one qualifying event or times
// out; events for unknown, foreign-actor, or already-satisfied windows are
// dropped. Custom IDs carry a per-session UUID, so two games in the same
// channel never see each other's clicks.
type collectors struct {
	mu      sync.Mutex
	windows map[string]window
}

func newCollectors() *collectors {
	return &collectors{windows: make(map[string]window)}
}

// arm opens a window for customID, accepting events from ownerID only. The
// caller must follow up with await or disarm.
func (c *collectors) arm(customID, ownerID string) <-chan componentEvent {
	ch := make(chan componentEvent, 1)
	c.mu.Lock()
	c.windows[customID] = window{ownerID: ownerID, ch: ch}
	c.mu.Unlock()
	return ch
}

func (c *collectors) disarm(customID string) {
	c.mu.Lock()
	delete(c.windows, customID)
	c.mu.Unlock()
}

// dispatch hands an event to the window armed for customID. It reports
// whether the event was accepted.
func (c *collectors) dispatch(customID string, ev componentEvent) bool {
	c.mu.Lock()
	w, ok := c.windows[customID]
	c.mu.Unlock()
	if !ok || ev.ActorID != w.ownerID {
		return false
	}
	select {
	case w.ch <- ev:
		return true
	default:
		// Window already satisfied, the event is stale.
		return false
	}
}

// await blocks until the window's event arrives or the timeout elapses,
// tearing the window down either way.
func (c *collectors) await(customID string, ch <-chan componentEvent, timeout time.Duration) (componentEvent, bool) {
	defer c.disarm(customID)
	select {
	case ev := <-ch:
		return ev, true
	case <-time.After(timeout):
		return componentEvent{}, false
	}
}
