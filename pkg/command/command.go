package command

// Type identifies what a parsed player command asks the engine to do.
type Type string

const (
	TypeMove      Type = "move"
	TypeTake      Type = "take"
	TypeDrop      Type = "drop"
	TypeExamine   Type = "examine"
	TypeUse       Type = "use"
	TypeLook      Type = "look"
	TypeInventory Type = "inventory"
	TypeHelp      Type = "help"
	TypeUnknown   Type = "unknown"
)

// Valid reports whether t is one of the defined command types.
func (t Type) Valid() bool {
	switch t {
	case TypeMove, TypeTake, TypeDrop, TypeExamine, TypeUse,
		TypeLook, TypeInventory, TypeHelp, TypeUnknown:
		return true
	}
	return false
}

// Command is the structured result of interpreting free-form player text.
// Confidence is informational only; the executor never branches on it.
type Command struct {
	Type            Type    `json:"type"`
	Target          string  `json:"target,omitempty"`           // direction for move, item for take/drop/examine/use
	SecondaryTarget string  `json:"secondary_target,omitempty"` // "use X on Y"
	RawInput        string  `json:"raw_input"`
	Confidence      float64 `json:"confidence"`
	ErrorMessage    string  `json:"error_message,omitempty"` // set when Type is unknown
}

// Result is the outcome of executing a command against a session.
type Result struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	LocationChanged  bool   `json:"location_changed"`
	InventoryChanged bool   `json:"inventory_changed"`
}
