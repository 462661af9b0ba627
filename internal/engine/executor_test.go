package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthfire/adventure-engine/internal/storage"
	"github.com/hearthfire/adventure-engine/pkg/adventure"
	"github.com/hearthfire/adventure-engine/pkg/command"
	"github.com/hearthfire/adventure-engine/pkg/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

func testAdventure() *adventure.Adventure {
	return &adventure.Adventure{
		ID:                 "test_adventure",
		Name:               "Test Adventure",
		StartingLocationID: "room1",
		Locations: map[string]adventure.Location{
			"room1": {
				ID:          "room1",
				Name:        "The Guard Room",
				Description: "A cramped stone chamber.",
				Exits: map[string]adventure.Exit{
					"north": {Direction: "north", LocationID: "room2"},
					"east":  {Direction: "east", LocationID: "room3", Locked: true, RequiredItem: "key"},
				},
				Items: []adventure.Item{
					{ID: "sword", Name: "rusty sword", Description: "Seen better days.", Takeable: true, Visible: true},
					{ID: "anvil", Name: "iron anvil", Description: "Bolted to the floor.", Visible: true},
					{ID: "key", Name: "brass key", Description: "Opens something.", Takeable: true, Visible: false},
				},
			},
			"room2": {
				ID:          "room2",
				Name:        "The Armory",
				Description: "Racks of ancient weapons line the walls.",
				Exits: map[string]adventure.Exit{
					"south": {Direction: "south", LocationID: "room1"},
				},
			},
			"room3": {
				ID:          "room3",
				Name:        "The Vault",
				Description: "Dust and cobwebs.",
				Exits: map[string]adventure.Exit{
					"west": {Direction: "west", LocationID: "room1"},
				},
			},
		},
	}
}

func setupExecutor(t *testing.T) (*Executor, *storage.MockStorage, *session.Session) {
	t.Helper()
	st := storage.NewMockStorage()
	st.AddAdventure(testAdventure())

	s, err := st.CreateSession(context.Background(), "test_adventure", "room1", "Tester")
	require.NoError(t, err)

	return New(st, testLogger()), st, s
}

func cmd(typ command.Type, target string) command.Command {
	return command.Command{Type: typ, Target: target, RawInput: fmt.Sprintf("%s %s", typ, target)}
}

// Scenario: "go north" moves to room2, marks it visited, and narrates it.
func TestExecuteMove(t *testing.T) {
	ex, st, s := setupExecutor(t)

	result := ex.Execute(context.Background(), cmd(command.TypeMove, "north"), s.ID)

	assert.True(t, result.Success)
	assert.True(t, result.LocationChanged)
	assert.False(t, result.InventoryChanged)
	assert.Contains(t, result.Message, "The Armory")
	assert.Contains(t, result.Message, "Visible exits: south")

	saved, err := st.GetSession(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, "room2", saved.CurrentLocationID)
	assert.True(t, saved.HasVisited("room2"))
	assert.True(t, saved.HasVisited("room1"), "visited set never shrinks")
}

func TestExecuteMoveNoTarget(t *testing.T) {
	ex, _, s := setupExecutor(t)

	result := ex.Execute(context.Background(), cmd(command.TypeMove, ""), s.ID)

	assert.False(t, result.Success)
	assert.False(t, result.LocationChanged)
	assert.Contains(t, result.Message, "Which direction?")
	assert.Contains(t, result.Message, "east, north")
}

func TestExecuteMoveInvalidExit(t *testing.T) {
	ex, st, s := setupExecutor(t)

	result := ex.Execute(context.Background(), cmd(command.TypeMove, "up"), s.ID)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "can't go that way")

	saved, _ := st.GetSession(context.Background(), s.ID)
	assert.Equal(t, "room1", saved.CurrentLocationID, "failed move must not change location")
}

// Scenario: the east exit is locked and requires the key.
func TestExecuteMoveLockedExit(t *testing.T) {
	ex, st, s := setupExecutor(t)

	result := ex.Execute(context.Background(), cmd(command.TypeMove, "east"), s.ID)

	assert.False(t, result.Success)
	assert.False(t, result.LocationChanged)
	assert.Contains(t, result.Message, "locked")
	assert.Contains(t, result.Message, "key")

	saved, _ := st.GetSession(context.Background(), s.ID)
	assert.Equal(t, "room1", saved.CurrentLocationID)
}

// Scenario: "take sword" succeeds once, then fails with "already have".
func TestExecuteTake(t *testing.T) {
	ex, st, s := setupExecutor(t)

	result := ex.Execute(context.Background(), cmd(command.TypeTake, "sword"), s.ID)

	assert.True(t, result.Success)
	assert.True(t, result.InventoryChanged)
	assert.Contains(t, result.Message, "rusty sword")

	saved, _ := st.GetSession(context.Background(), s.ID)
	assert.Equal(t, []string{"sword"}, saved.Inventory)
	assert.True(t, saved.LocationFlag("room1", "item_taken_sword"))

	again := ex.Execute(context.Background(), cmd(command.TypeTake, "sword"), s.ID)
	assert.False(t, again.Success)
	assert.False(t, again.InventoryChanged)
	assert.Contains(t, again.Message, "already have")

	saved, _ = st.GetSession(context.Background(), s.ID)
	assert.Equal(t, []string{"sword"}, saved.Inventory, "duplicate take is a no-op")
}

func TestExecuteTakeFuzzyMatch(t *testing.T) {
	ex, _, s := setupExecutor(t)

	// Substring of the display name is enough.
	result := ex.Execute(context.Background(), cmd(command.TypeTake, "RUSTY"), s.ID)
	assert.True(t, result.Success)
}

func TestExecuteTakeUntakeable(t *testing.T) {
	ex, _, s := setupExecutor(t)

	result := ex.Execute(context.Background(), cmd(command.TypeTake, "anvil"), s.ID)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "can't take")
}

func TestExecuteTakeHiddenItem(t *testing.T) {
	ex, _, s := setupExecutor(t)

	result := ex.Execute(context.Background(), cmd(command.TypeTake, "key"), s.ID)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "don't see")
}

func TestExecuteTakeNoTarget(t *testing.T) {
	ex, _, s := setupExecutor(t)

	result := ex.Execute(context.Background(), cmd(command.TypeTake, ""), s.ID)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "What do you want to take?")
	assert.Contains(t, result.Message, "rusty sword")
}

func TestExecuteTakeNoTargetEmptyRoom(t *testing.T) {
	ex, _, _ := setupExecutor(t)
	st := storage.NewMockStorage()
	adv := testAdventure()
	st.AddAdventure(adv)
	s, err := st.CreateSession(context.Background(), "test_adventure", "room3", "")
	require.NoError(t, err)
	ex = New(st, testLogger())

	result := ex.Execute(context.Background(), cmd(command.TypeTake, ""), s.ID)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "nothing here to take")
}

func TestExecuteDrop(t *testing.T) {
	ex, st, s := setupExecutor(t)
	ctx := context.Background()

	ex.Execute(ctx, cmd(command.TypeTake, "sword"), s.ID)

	result := ex.Execute(ctx, cmd(command.TypeDrop, "sword"), s.ID)
	assert.True(t, result.Success)
	assert.True(t, result.InventoryChanged)
	assert.Contains(t, result.Message, "You drop the sword.")

	saved, _ := st.GetSession(ctx, s.ID)
	assert.Empty(t, saved.Inventory)

	again := ex.Execute(ctx, cmd(command.TypeDrop, "sword"), s.ID)
	assert.False(t, again.Success)
	assert.Contains(t, again.Message, "don't have")
}

func TestExecuteDropNoTarget(t *testing.T) {
	ex, _, s := setupExecutor(t)
	ctx := context.Background()

	result := ex.Execute(ctx, cmd(command.TypeDrop, ""), s.ID)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "not carrying anything")

	ex.Execute(ctx, cmd(command.TypeTake, "sword"), s.ID)
	result = ex.Execute(ctx, cmd(command.TypeDrop, ""), s.ID)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "You're carrying: sword")
}

func TestExecuteExamineLocationItem(t *testing.T) {
	ex, _, s := setupExecutor(t)

	result := ex.Execute(context.Background(), cmd(command.TypeExamine, "sword"), s.ID)

	assert.True(t, result.Success)
	assert.Contains(t, result.Message, "Seen better days.")
}

func TestExecuteExamineInventoryItem(t *testing.T) {
	ex, _, s := setupExecutor(t)
	ctx := context.Background()

	ex.Execute(ctx, cmd(command.TypeTake, "sword"), s.ID)
	ex.Execute(ctx, cmd(command.TypeMove, "north"), s.ID)

	// The armory has no sword on the ground, but we carry one.
	result := ex.Execute(ctx, cmd(command.TypeExamine, "sword"), s.ID)
	assert.True(t, result.Success)
	assert.Contains(t, result.Message, "You examine the sword.")
}

func TestExecuteExamineMissing(t *testing.T) {
	ex, _, s := setupExecutor(t)

	result := ex.Execute(context.Background(), cmd(command.TypeExamine, "ghost"), s.ID)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "don't see 'ghost' here")

	result = ex.Execute(context.Background(), cmd(command.TypeExamine, ""), s.ID)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "What do you want to examine?")
}

func TestExecuteUse(t *testing.T) {
	ex, _, s := setupExecutor(t)
	ctx := context.Background()

	// Not held: exact id is required, and we haven't taken it.
	result := ex.Execute(ctx, cmd(command.TypeUse, "sword"), s.ID)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "don't have")

	ex.Execute(ctx, cmd(command.TypeTake, "sword"), s.ID)

	result = ex.Execute(ctx, cmd(command.TypeUse, "sword"), s.ID)
	assert.True(t, result.Success)
	assert.Contains(t, result.Message, "You use the sword.")

	useOn := command.Command{Type: command.TypeUse, Target: "sword", SecondaryTarget: "anvil"}
	result = ex.Execute(ctx, useOn, s.ID)
	assert.True(t, result.Success)
	assert.Contains(t, result.Message, "nothing happens")
}

func TestExecuteUseRequiresExactID(t *testing.T) {
	ex, _, s := setupExecutor(t)
	ctx := context.Background()

	ex.Execute(ctx, cmd(command.TypeTake, "sword"), s.ID)

	// "rusty" fuzzy-matches for take, but use is strict.
	result := ex.Execute(ctx, cmd(command.TypeUse, "rusty"), s.ID)
	assert.False(t, result.Success)
}

func TestExecuteLookIsIdempotent(t *testing.T) {
	ex, st, s := setupExecutor(t)
	ctx := context.Background()

	before, _ := st.GetSession(ctx, s.ID)

	for i := 0; i < 3; i++ {
		result := ex.Execute(ctx, cmd(command.TypeLook, ""), s.ID)
		assert.True(t, result.Success)
		assert.False(t, result.LocationChanged)
		assert.False(t, result.InventoryChanged)
		assert.Contains(t, result.Message, "The Guard Room")
		assert.Contains(t, result.Message, "You can see: rusty sword, iron anvil")
	}

	after, _ := st.GetSession(ctx, s.ID)
	assert.Equal(t, before.CurrentLocationID, after.CurrentLocationID)
	assert.Equal(t, before.Inventory, after.Inventory)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt, "look must not persist anything")
}

func TestExecuteInventory(t *testing.T) {
	ex, _, s := setupExecutor(t)
	ctx := context.Background()

	result := ex.Execute(ctx, cmd(command.TypeInventory, ""), s.ID)
	assert.True(t, result.Success)
	assert.Contains(t, result.Message, "aren't carrying anything")

	ex.Execute(ctx, cmd(command.TypeTake, "sword"), s.ID)

	result = ex.Execute(ctx, cmd(command.TypeInventory, ""), s.ID)
	assert.True(t, result.Success)
	assert.Contains(t, result.Message, "You are carrying: sword")
}

func TestExecuteHelp(t *testing.T) {
	ex, _, s := setupExecutor(t)

	result := ex.Execute(context.Background(), cmd(command.TypeHelp, ""), s.ID)
	assert.True(t, result.Success)
	assert.Contains(t, result.Message, "Movement:")
	assert.Contains(t, result.Message, "natural language")
}

func TestExecuteUnknown(t *testing.T) {
	ex, _, s := setupExecutor(t)

	withMsg := command.Command{Type: command.TypeUnknown, RawInput: "xyzzy", ErrorMessage: "I don't understand 'xyzzy'. Type 'help' for assistance."}
	result := ex.Execute(context.Background(), withMsg, s.ID)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "xyzzy")

	noMsg := command.Command{Type: command.TypeUnknown, RawInput: "plugh"}
	result = ex.Execute(context.Background(), noMsg, s.ID)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "plugh")
}

func TestExecuteSessionNotFound(t *testing.T) {
	ex, _, _ := setupExecutor(t)

	result := ex.Execute(context.Background(), cmd(command.TypeLook, ""), uuid.New())
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "Session not found")
}

func TestExecuteAdventureNotFound(t *testing.T) {
	st := storage.NewMockStorage()
	s, err := st.CreateSession(context.Background(), "no_such_adventure", "room1", "")
	require.NoError(t, err)
	ex := New(st, testLogger())

	result := ex.Execute(context.Background(), cmd(command.TypeLook, ""), s.ID)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "Adventure data not found")
}

func TestExecuteCurrentLocationNotFound(t *testing.T) {
	st := storage.NewMockStorage()
	st.AddAdventure(testAdventure())
	s, err := st.CreateSession(context.Background(), "test_adventure", "no_such_room", "")
	require.NoError(t, err)
	ex := New(st, testLogger())

	result := ex.Execute(context.Background(), cmd(command.TypeLook, ""), s.ID)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "Current location not found")
}
