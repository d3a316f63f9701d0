package behavior

import (
	"fmt"
	"slices"

	"dungeoncore/internal/ecs"
	"dungeoncore/internal/event"
)

// Trigger is something that happened to an entity which may change its
// mode.
type Trigger uint8

const (
	TriggerAttacked  Trigger = iota // the entity was attacked
	TriggerBadlyHurt                // hit points fell below BadlyHurtPercent
)

func (t Trigger) String() string {
	switch t {
	case TriggerAttacked:
		return "attacked"
	case TriggerBadlyHurt:
		return "badly_hurt"
	}
	return fmt.Sprintf("Trigger(%d)", uint8(t))
}

// BadlyHurtPercent is the share of maximum hit points under which a
// monster turns to flee.
const BadlyHurtPercent = 30

// Transition moves an entity in mode From to mode To when On fires.
type Transition struct {
	From ecs.Mode
	On   Trigger
	To   ecs.Mode
}

// DefaultTransitions wakes sleepers that are hit and sends the badly hurt
// running.
var DefaultTransitions = []Transition{
	{ecs.ModeSleeping, TriggerAttacked, ecs.ModeDefault},
	{ecs.ModeSleeping, TriggerBadlyHurt, ecs.ModeFleeing},
	{ecs.ModeDefault, TriggerBadlyHurt, ecs.ModeFleeing},
	{ecs.ModeChasing, TriggerBadlyHurt, ecs.ModeFleeing},
}

type transitionKey struct {
	from ecs.Mode
	on   Trigger
}

type gated struct {
	Behavior
	modes []ecs.Mode
}

func (g gated) activeIn(m ecs.Mode) bool {
	return g.modes == nil || slices.Contains(g.modes, m)
}

// Composite is a mode state machine over an ordered list of strategies. On
// every event it first applies the transition table, then offers the event
// to each strategy enabled in the current mode until one handles it.
type Composite struct {
	base
	subs  []gated
	table map[transitionKey]ecs.Mode
}

func newComposite(e *ecs.Entity, lv Level, subs []gated, transitions []Transition) *Composite {
	c := &Composite{
		base:  base{id: "composite", entity: e, level: lv},
		subs:  subs,
		table: make(map[transitionKey]ecs.Mode, len(transitions)),
	}
	for _, t := range transitions {
		c.table[transitionKey{t.From, t.On}] = t.To
	}
	seen := map[event.Name]bool{event.EntityAttacked: true, event.EntityTookDamage: true}
	c.events = []event.Name{event.EntityAttacked, event.EntityTookDamage}
	for _, s := range subs {
		for _, n := range s.Events() {
			if !seen[n] {
				seen[n] = true
				c.events = append(c.events, n)
			}
		}
	}
	return c
}

// Children returns the ids of the wrapped strategies in order.
func (c *Composite) Children() []string {
	ids := make([]string, len(c.subs))
	for i, s := range c.subs {
		ids[i] = s.ID()
	}
	return ids
}

func (c *Composite) HandleEvent(ev event.Event) bool {
	if tr, ok := c.trigger(ev); ok {
		c.fire(tr)
	}
	mode := c.entity.Mode
	for _, s := range c.subs {
		if !s.activeIn(mode) || !slices.Contains(s.Events(), ev.Name) {
			continue
		}
		if s.HandleEvent(ev) {
			return true
		}
	}
	return false
}

func (c *Composite) trigger(ev event.Event) (Trigger, bool) {
	if !c.self(ev) {
		return 0, false
	}
	switch p := ev.Payload.(type) {
	case event.Attacked:
		return TriggerAttacked, true
	case event.TookDamage:
		if p.HP > 0 && p.HP*100 < c.entity.Stats.HPMax*BadlyHurtPercent {
			return TriggerBadlyHurt, true
		}
	}
	return 0, false
}

// fire applies tr. A stunned entity keeps its stun; the transition applies
// to the mode it resumes afterwards.
func (c *Composite) fire(tr Trigger) {
	state := c.entity.BehaviorState
	if c.entity.Mode == ecs.ModeStunned {
		resume, ok := state[stunResumeKey].(ecs.Mode)
		if !ok {
			return
		}
		if to, ok := c.table[transitionKey{resume, tr}]; ok {
			state[stunResumeKey] = to
		}
		return
	}
	if to, ok := c.table[transitionKey{c.entity.Mode, tr}]; ok {
		c.entity.Mode = to
	}
}
