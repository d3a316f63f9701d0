package behavior

import (
	"fmt"

	"dungeoncore/internal/catalog"
	"dungeoncore/internal/ecs"
	"dungeoncore/internal/event"
	"dungeoncore/internal/gamemap"
)

// PlayerID is the behavior id of the command-driven player controller.
const PlayerID = "player"

// CommandKind enumerates the intents a player can issue.
type CommandKind uint8

const (
	CmdMove CommandKind = iota
	CmdPickUp
	CmdCloseDoor
	CmdWait
	CmdThrow
)

var commandNames = [...]string{"move", "pick_up", "close_door", "wait", "throw"}

func (k CommandKind) String() string {
	if int(k) < len(commandNames) {
		return commandNames[k]
	}
	return fmt.Sprintf("CommandKind(%d)", uint8(k))
}

// Command is one player intent. Dir is the step for CmdMove and the side of
// the door for CmdCloseDoor; Target is where CmdThrow aims.
type Command struct {
	Kind   CommandKind
	Dir    gamemap.Point
	Target gamemap.Point
}

// Move returns a move command one step in dir.
func Move(dir gamemap.Point) Command { return Command{Kind: CmdMove, Dir: dir} }

// PlayerThrowSpeed is how many cells a rock thrown by the player covers per
// turn.
const PlayerThrowSpeed = 3

// Controller turns player commands into level actions. It subscribes to no
// events.
type Controller struct {
	base
}

func newController(e *ecs.Entity, lv Level) Behavior {
	return &Controller{base{id: PlayerID, entity: e, level: lv}}
}

// HandleEvent ignores events; the player acts only through Perform.
func (c *Controller) HandleEvent(event.Event) bool { return false }

// Entity returns the controlled entity.
func (c *Controller) Entity() *ecs.Entity { return c.entity }

// Perform carries out cmd and reports whether it took effect. A failed
// command (walking into a wall, closing a floor tile) does not pass the
// turn.
func (c *Controller) Perform(cmd Command) bool {
	pos, ok := c.entity.Position()
	if !ok {
		return false
	}
	switch cmd.Kind {
	case CmdMove:
		return c.level.Move(c.entity, pos.Add(cmd.Dir))
	case CmdPickUp:
		return c.level.Pickup(c.entity)
	case CmdCloseDoor:
		return c.level.CloseDoor(c.entity, pos.Add(cmd.Dir))
	case CmdWait:
		return c.level.Wait(c.entity)
	case CmdThrow:
		rock := c.entity.FindItem(catalog.RockID)
		if rock == nil {
			return false
		}
		return c.level.Throw(c.entity, rock, cmd.Target, PlayerThrowSpeed)
	}
	return false
}
