package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/hearthfire/adventure-engine/internal/storage"
	"github.com/hearthfire/adventure-engine/pkg/adventure"
	"github.com/hearthfire/adventure-engine/pkg/command"
	"github.com/hearthfire/adventure-engine/pkg/session"
)

// Executor applies structured commands to game sessions. Handlers are pure
// functions of (command, session, adventure, location); every outcome can be
// reasoned about from the world graph and session alone. All failures are
// reported as Results with guidance text, never as panics or errors escaping
// to the player.
type Executor struct {
	storage storage.Storage
	logger  *slog.Logger

	// locks serializes the load-mutate-save cycle per session id so that
	// two concurrent commands against the same session cannot lose writes.
	// Entries are never reaped; sessions number in the thousands at most.
	locks sync.Map // uuid.UUID -> *sync.Mutex
}

// New creates an executor backed by the given storage.
func New(st storage.Storage, logger *slog.Logger) *Executor {
	return &Executor{
		storage: st,
		logger:  logger,
	}
}

func (e *Executor) sessionLock(id uuid.UUID) *sync.Mutex {
	lock, _ := e.locks.LoadOrStore(id, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// Execute runs a parsed command against the identified session and returns
// the player-facing result. State-mutating handlers persist the session
// before returning.
func (e *Executor) Execute(ctx context.Context, cmd command.Command, sessionID uuid.UUID) command.Result {
	lock := e.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	s, err := e.storage.GetSession(ctx, sessionID)
	if err != nil {
		e.logger.Error("Failed to load session", "session_id", sessionID, "error", err)
		return failure("Something went wrong loading your game. Please try again.")
	}
	if s == nil {
		return failure("Session not found.")
	}

	adv, err := e.storage.GetAdventure(ctx, s.AdventureID)
	if err != nil {
		e.logger.Error("Failed to load adventure", "adventure_id", s.AdventureID, "error", err)
		return failure("Something went wrong loading the adventure. Please try again.")
	}
	if adv == nil {
		return failure("Adventure data not found.")
	}

	loc := adv.Location(s.CurrentLocationID)
	if loc == nil {
		return failure("Current location not found.")
	}

	switch cmd.Type {
	case command.TypeMove:
		return e.executeMove(ctx, cmd, s, adv, loc)
	case command.TypeTake:
		return e.executeTake(ctx, cmd, s, loc)
	case command.TypeDrop:
		return e.executeDrop(ctx, cmd, s)
	case command.TypeExamine:
		return e.executeExamine(cmd, s, loc)
	case command.TypeUse:
		return e.executeUse(cmd, s)
	case command.TypeLook:
		return e.executeLook(loc)
	case command.TypeInventory:
		return e.executeInventory(s)
	case command.TypeHelp:
		return e.executeHelp()
	case command.TypeUnknown:
		return e.executeUnknown(cmd)
	default:
		return failure(fmt.Sprintf("Command type '%s' not implemented.", cmd.Type))
	}
}

func (e *Executor) executeMove(ctx context.Context, cmd command.Command, s *session.Session, adv *adventure.Adventure, loc *adventure.Location) command.Result {
	if cmd.Target == "" {
		return failure(fmt.Sprintf("Which direction? Available exits: %s", joinKeys(loc)))
	}

	exit, ok := loc.Exits[cmd.Target]
	if !ok {
		return failure(fmt.Sprintf("You can't go that way. Available exits: %s", joinKeys(loc)))
	}

	if exit.Locked {
		if exit.RequiredItem != "" {
			return failure(fmt.Sprintf("The %s exit is locked. You need %s.", cmd.Target, exit.RequiredItem))
		}
		return failure(fmt.Sprintf("The %s exit is locked.", cmd.Target))
	}

	newLoc := adv.Location(exit.LocationID)
	if newLoc == nil {
		// Content validation prevents dangling exits; treat a miss as a
		// data error without moving the player anywhere invalid.
		e.logger.Error("Exit targets unknown location", "from", loc.ID, "target", exit.LocationID)
		return failure("You can't go that way right now.")
	}

	s.Visit(newLoc.ID)
	if err := e.storage.SaveSession(ctx, s); err != nil {
		e.logger.Error("Failed to save session after move", "session_id", s.ID, "error", err)
		return failure("Something went wrong saving your progress. Please try again.")
	}

	return command.Result{
		Success:         true,
		Message:         describeLocation(newLoc),
		LocationChanged: true,
	}
}

func (e *Executor) executeTake(ctx context.Context, cmd command.Command, s *session.Session, loc *adventure.Location) command.Result {
	if cmd.Target == "" {
		visible := loc.VisibleItemNames()
		if len(visible) > 0 {
			return failure(fmt.Sprintf("What do you want to take? You can see: %s", strings.Join(visible, ", ")))
		}
		return failure("There's nothing here to take.")
	}

	item := loc.FindVisibleItem(cmd.Target)
	if item == nil {
		return failure(fmt.Sprintf("You don't see '%s' here.", cmd.Target))
	}

	if !item.Takeable {
		return failure(fmt.Sprintf("You can't take the %s.", item.Name))
	}

	if s.HasItem(item.ID) {
		return failure(fmt.Sprintf("You already have the %s.", item.Name))
	}

	s.AddItem(item.ID)
	// Provenance marker for future content logic; nothing in the engine
	// reads it back.
	s.SetLocationFlag(loc.ID, "item_taken_"+item.ID, true)

	if err := e.storage.SaveSession(ctx, s); err != nil {
		e.logger.Error("Failed to save session after take", "session_id", s.ID, "error", err)
		return failure("Something went wrong saving your progress. Please try again.")
	}

	return command.Result{
		Success:          true,
		Message:          fmt.Sprintf("You take the %s.", item.Name),
		InventoryChanged: true,
	}
}

func (e *Executor) executeDrop(ctx context.Context, cmd command.Command, s *session.Session) command.Result {
	if cmd.Target == "" {
		if len(s.Inventory) > 0 {
			return failure(fmt.Sprintf("What do you want to drop? You're carrying: %s", strings.Join(s.Inventory, ", ")))
		}
		return failure("You're not carrying anything.")
	}

	itemID := findInventoryItem(s.Inventory, cmd.Target)
	if itemID == "" {
		return failure(fmt.Sprintf("You don't have '%s'.", cmd.Target))
	}

	s.RemoveItem(itemID)
	if err := e.storage.SaveSession(ctx, s); err != nil {
		e.logger.Error("Failed to save session after drop", "session_id", s.ID, "error", err)
		return failure("Something went wrong saving your progress. Please try again.")
	}

	return command.Result{
		Success:          true,
		Message:          fmt.Sprintf("You drop the %s.", itemID),
		InventoryChanged: true,
	}
}

func (e *Executor) executeExamine(cmd command.Command, s *session.Session, loc *adventure.Location) command.Result {
	if cmd.Target == "" {
		return failure("What do you want to examine?")
	}

	if item := loc.FindVisibleItem(cmd.Target); item != nil {
		return success(fmt.Sprintf("%s: %s", item.Name, item.Description))
	}

	// Inventory entries carry only the item id; the original description
	// stays with the location the item came from.
	if itemID := findInventoryItem(s.Inventory, cmd.Target); itemID != "" {
		return success(fmt.Sprintf("You examine the %s.", itemID))
	}

	return failure(fmt.Sprintf("You don't see '%s' here.", cmd.Target))
}

func (e *Executor) executeUse(cmd command.Command, s *session.Session) command.Result {
	if cmd.Target == "" {
		return failure("What do you want to use?")
	}

	// Structural identifier: use requires the exact inventory item id, no
	// fuzzy matching.
	if !s.HasItem(cmd.Target) {
		return failure(fmt.Sprintf("You don't have '%s'.", cmd.Target))
	}

	if cmd.SecondaryTarget != "" {
		return success(fmt.Sprintf("You try to use the %s on the %s, but nothing happens.", cmd.Target, cmd.SecondaryTarget))
	}
	return success(fmt.Sprintf("You use the %s.", cmd.Target))
}

func (e *Executor) executeLook(loc *adventure.Location) command.Result {
	return success(describeLocation(loc))
}

func (e *Executor) executeInventory(s *session.Session) command.Result {
	if len(s.Inventory) == 0 {
		return success("You aren't carrying anything.")
	}
	return success(fmt.Sprintf("You are carrying: %s", strings.Join(s.Inventory, ", ")))
}

const helpText = `Available commands:
- Movement: go [direction], north, south, east, west, up, down
- Items: take [item], drop [item], examine [item], use [item]
- Information: look, inventory (or i)
- Other: help

You can use natural language! Try things like:
- "pick up the candle"
- "walk to the graveyard"
- "check my inventory"`

func (e *Executor) executeHelp() command.Result {
	return success(helpText)
}

func (e *Executor) executeUnknown(cmd command.Command) command.Result {
	if cmd.ErrorMessage != "" {
		return failure(cmd.ErrorMessage)
	}
	return failure(fmt.Sprintf("I don't understand '%s'. Type 'help' for assistance.", cmd.RawInput))
}

// findInventoryItem matches a player-supplied name against held item ids by
// case-insensitive substring; the first match wins.
func findInventoryItem(inventory []string, target string) string {
	query := strings.ToLower(target)
	for _, id := range inventory {
		if strings.Contains(strings.ToLower(id), query) {
			return id
		}
	}
	return ""
}

// describeLocation composes the narration shown on look and after movement:
// name, description, exits, and visible items.
func describeLocation(loc *adventure.Location) string {
	var b strings.Builder
	b.WriteString(loc.Name)
	b.WriteString("\n\n")
	b.WriteString(loc.Description)

	if len(loc.Exits) > 0 {
		b.WriteString("\n\nVisible exits: ")
		b.WriteString(strings.Join(loc.ExitKeys(), ", "))
	}

	if items := loc.VisibleItemNames(); len(items) > 0 {
		b.WriteString("\n\nYou can see: ")
		b.WriteString(strings.Join(items, ", "))
	}

	return b.String()
}

func joinKeys(loc *adventure.Location) string {
	return strings.Join(loc.ExitKeys(), ", ")
}

func success(message string) command.Result {
	return command.Result{Success: true, Message: message}
}

func failure(message string) command.Result {
	return command.Result{Success: false, Message: message}
}
