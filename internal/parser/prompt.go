package parser

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hearthfire/adventure-engine/pkg/adventure"
)

// buildContext summarizes what the player can currently see and carry, so
// the LLM can resolve targets against real exits and items.
func buildContext(loc *adventure.Location, inventory []string) string {
	exits := loc.ExitKeys()
	items := loc.VisibleItemNames()

	return fmt.Sprintf(`Current Location: %s

Available Exits: %s
Visible Items: %s
Player Inventory: %s`,
		loc.Name,
		joinOr(exits, "none"),
		joinOr(items, "none"),
		joinOr(inventory, "empty"))
}

func joinOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, ", ")
}

func buildSystemPrompt(context string) string {
	return fmt.Sprintf(`You are a command parser for a text adventure game. Your job is to convert natural language player input into structured JSON commands.

%s

Parse the player's input and return ONLY a valid JSON object with this structure:
{
  "type": "command_type",
  "target": "target_name",
  "secondary_target": null,
  "confidence": 0.95
}

Valid command types:
- "move": Go to a different location (target = exit direction)
- "take": Pick up an item (target = item name)
- "drop": Drop an item from inventory (target = item name)
- "examine": Look at something closely (target = item or location feature)
- "use": Use an item (target = item, secondary_target = what to use it on)
- "look": Look around current location (no target needed)
- "inventory": Check inventory (no target needed)
- "help": Get help (no target needed)
- "unknown": Could not parse command

Rules:
1. Match targets to available exits, items, or inventory items
2. Be flexible with phrasing ("go north", "walk north", "head north" all = move north)
3. If target is ambiguous, pick the most likely one
4. If command makes no sense, return type "unknown"
5. Set confidence 0.0-1.0 based on how certain you are
6. Return ONLY valid JSON, no extra text

Examples:
"go north" -> {"type": "move", "target": "north", "confidence": 1.0}
"pick up the candle" -> {"type": "take", "target": "candle", "confidence": 0.95}
"look around" -> {"type": "look", "confidence": 1.0}
"examine altar" -> {"type": "examine", "target": "altar", "confidence": 1.0}
"asdf jkl" -> {"type": "unknown", "confidence": 0.0}`, context)
}

// decodeLLMCommand extracts the first well-formed JSON object from the
// response text and decodes it. Models sometimes wrap their JSON in prose;
// we scan for a candidate object instead of trusting the whole reply.
func decodeLLMCommand(response string) (*llmCommand, error) {
	raw, err := extractJSONObject(response)
	if err != nil {
		return nil, err
	}

	var cmd llmCommand
	if err := json.Unmarshal(raw, &cmd); err != nil {
		return nil, fmt.Errorf("failed to decode command JSON: %w", err)
	}
	if cmd.Type == "" {
		return nil, fmt.Errorf("command JSON is missing a type")
	}
	return &cmd, nil
}

// extractJSONObject returns the first balanced {...} span in s that parses
// as a JSON object.
func extractJSONObject(s string) ([]byte, error) {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return nil, fmt.Errorf("no JSON object in response")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				candidate := []byte(s[start : i+1])
				if !json.Valid(candidate) {
					return nil, fmt.Errorf("candidate object is not valid JSON")
				}
				return candidate, nil
			}
		}
	}

	return nil, fmt.Errorf("unterminated JSON object in response")
}
