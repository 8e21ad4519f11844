package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/john-paul-ruf/nft-studio/internal/effect"
	"github.com/john-paul-ruf/nft-studio/internal/event"
	"github.com/john-paul-ruf/nft-studio/internal/event/events"
)

// ErrNoParent is returned when a secondary or keyframe effect is picked
// without a parent effect.
var ErrNoParent = errors.New("menu: sub-effect needs a parent")

// Picker filters the effect catalog and emits add events.
type Picker struct {
	emitter *event.Emitter

	mu       sync.RWMutex
	catalog  effect.Catalog
	kind     effect.Type
	query    string
	parentID string
	frame    int
}

// NewPicker returns a picker listing primary effects.
func NewPicker(bus event.Bus, catalog effect.Catalog) *Picker {
	return &Picker{
		emitter: event.NewEmitter(bus, "menu", "EffectPicker"),
		catalog: catalog,
		kind:    effect.TypePrimary,
	}
}

// SetCatalog replaces the listed effects.
func (p *Picker) SetCatalog(c effect.Catalog) {
	p.mu.Lock()
	p.catalog = c
	p.mu.Unlock()
}

// SetType switches the listed effect type.
func (p *Picker) SetType(t effect.Type) {
	p.mu.Lock()
	p.kind = t
	p.mu.Unlock()
}

// SetFilter sets the search text. Matching is case-insensitive against
// the label, name and registry key.
func (p *Picker) SetFilter(q string) {
	p.mu.Lock()
	p.query = strings.ToLower(strings.TrimSpace(q))
	p.mu.Unlock()
}

// Target sets the parent effect and frame for sub-effects.
func (p *Picker) Target(parentID string, frame int) {
	p.mu.Lock()
	p.parentID = parentID
	p.frame = frame
	p.mu.Unlock()
}

// Items returns the effects matching the current type and filter.
func (p *Picker) Items() []effect.Info {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var out []effect.Info
	for _, info := range p.catalog.ByType(p.kind) {
		if matches(info, p.query) {
			out = append(out, info)
		}
	}
	return out
}

func matches(info effect.Info, q string) bool {
	if q == "" {
		return true
	}
	for _, s := range []string{info.Label(), info.Name, info.RegistryKey} {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}

// Choose emits the add event for info: effectspanel:effect:add for top
// level types, addsecondary or addkeyframe for sub-effects.
func (p *Picker) Choose(ctx context.Context, info effect.Info) error {
	p.mu.RLock()
	t := info.Type
	if t == "" {
		t = p.kind
	}
	parentID, frame := p.parentID, p.frame
	p.mu.RUnlock()

	switch t {
	case effect.TypeSecondary, effect.TypeKeyframe:
		if parentID == "" {
			return fmt.Errorf("%w: %s", ErrNoParent, info.Key())
		}
		tp := events.TopicPanelEffectAddSecondary
		if t == effect.TypeKeyframe {
			tp = events.TopicPanelEffectAddKeyframe
		}
		return p.emitter.Emit(ctx, tp, events.EffectAttach{ParentID: parentID, Name: info.Key(), Type: t, Frame: frame})
	default:
		return p.emitter.Emit(ctx, events.TopicPanelEffectAdd, events.EffectAdd{Name: info.Key(), Type: t})
	}
}
