package parser

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/hearthfire/adventure-engine/internal/services"
	"github.com/hearthfire/adventure-engine/pkg/adventure"
	"github.com/hearthfire/adventure-engine/pkg/command"
)

const (
	llmTemperature = 0.2
	llmMaxTokens   = 150
)

// Parser converts free-form player input into structured commands. It tries
// the LLM tier first when one is configured and reachable, and degrades
// silently to rule-based matching on any failure, so the game stays playable
// with no external dependencies. Parse never returns an error.
type Parser struct {
	llm     services.LLMService
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a parser. llm may be nil; rule-based parsing always works.
func New(llm services.LLMService, timeout time.Duration, logger *slog.Logger) *Parser {
	return &Parser{
		llm:     llm,
		timeout: timeout,
		logger:  logger,
	}
}

// Parse interprets raw player input in the context of the current location
// and inventory.
func (p *Parser) Parse(ctx context.Context, input string, loc *adventure.Location, inventory []string) command.Command {
	if loc == nil {
		// A persisted session can reference a location id the adventure no
		// longer defines. Parse with no exits or items in scope; the
		// executor reports the missing location to the player.
		loc = &adventure.Location{}
	}

	if p.llm != nil && p.llm.IsConfigured() {
		cmd, ok := p.parseWithLLM(ctx, input, loc, inventory)
		if ok {
			return cmd
		}
		p.logger.Warn("LLM parse failed, falling back to rule-based parsing", "input", input)
	}

	return p.parseWithRules(input, loc)
}

// llmCommand is the strict decode target for the LLM's JSON reply. Anything
// that doesn't fit this shape is treated as unparseable and triggers the
// fallback; untyped maps never cross this boundary.
type llmCommand struct {
	Type            string   `json:"type"`
	Target          string   `json:"target"`
	SecondaryTarget string   `json:"secondary_target"`
	Confidence      *float64 `json:"confidence"`
}

func (p *Parser) parseWithLLM(ctx context.Context, input string, loc *adventure.Location, inventory []string) (command.Command, bool) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	systemPrompt := buildSystemPrompt(buildContext(loc, inventory))

	response, err := p.llm.GenerateText(ctx, systemPrompt, input, llmTemperature, llmMaxTokens)
	if err != nil {
		p.logger.Warn("LLM request failed", "error", err)
		return command.Command{}, false
	}

	parsed, err := decodeLLMCommand(response)
	if err != nil {
		p.logger.Warn("LLM response was not a usable command", "error", err, "response", truncate(response, 200))
		return command.Command{}, false
	}

	cmdType := command.Type(parsed.Type)
	if !cmdType.Valid() {
		p.logger.Warn("LLM returned unknown command type", "type", parsed.Type)
		return command.Command{}, false
	}

	confidence := 0.5
	if parsed.Confidence != nil {
		confidence = clamp01(*parsed.Confidence)
	}

	cmd := command.Command{
		Type:            cmdType,
		Target:          strings.TrimSpace(parsed.Target),
		SecondaryTarget: strings.TrimSpace(parsed.SecondaryTarget),
		RawInput:        input,
		Confidence:      confidence,
	}
	if cmd.Type == command.TypeUnknown {
		cmd.ErrorMessage = unknownMessage(input)
	}
	return cmd, true
}

var (
	moveVerbRe    = regexp.MustCompile(`^(?:go|walk|move|head|run)\s+(?:to\s+)?(?:the\s+)?(\w+)$`)
	bareWordRe    = regexp.MustCompile(`^(\w+)$`)
	takeRe        = regexp.MustCompile(`^(?:take|get|pick up|grab|pickup)(?:\s+(?:the\s+)?(.+))?$`)
	dropRe        = regexp.MustCompile(`^(?:drop|discard|leave)\s+(?:the\s+)?(.+)$`)
	examineRe     = regexp.MustCompile(`^(?:examine|inspect|look at|check|x)\s+(?:the\s+)?(.+)$`)
	useOnRe       = regexp.MustCompile(`^use\s+(?:the\s+)?(.+?)\s+(?:on|with)\s+(?:the\s+)?(.+)$`)
	useRe         = regexp.MustCompile(`^use\s+(?:the\s+)?(.+)$`)
	inventoryCmds = map[string]bool{"inventory": true, "i": true, "inv": true}
	lookCmds      = map[string]bool{"look": true, "l": true, "look around": true}
	helpCmds      = map[string]bool{"help": true, "?": true}

	// Compass and vertical shorthands get full confidence as bare words;
	// any other bare word is only a guess at a direction.
	directionWords = map[string]bool{
		"north": true, "south": true, "east": true, "west": true,
		"n": true, "s": true, "e": true, "w": true,
		"up": true, "down": true, "u": true, "d": true,
	}
)

// parseWithRules is the deterministic fallback tier. Recognizers run in a
// fixed order over the lower-cased, trimmed input. A direction candidate is
// only accepted when it is a real exit of the current location; everything
// else falls through to the later recognizers before we give up.
func (p *Parser) parseWithRules(input string, loc *adventure.Location) command.Command {
	normalized := strings.ToLower(strings.TrimSpace(input))

	switch {
	case inventoryCmds[normalized]:
		return command.Command{Type: command.TypeInventory, RawInput: input, Confidence: 1.0}
	case lookCmds[normalized]:
		return command.Command{Type: command.TypeLook, RawInput: input, Confidence: 1.0}
	case helpCmds[normalized]:
		return command.Command{Type: command.TypeHelp, RawInput: input, Confidence: 1.0}
	}

	// Movement: explicit verb, or a single bare word that names an exit.
	if m := moveVerbRe.FindStringSubmatch(normalized); m != nil {
		if _, ok := loc.Exits[m[1]]; ok {
			return command.Command{Type: command.TypeMove, Target: m[1], RawInput: input, Confidence: 1.0}
		}
	} else if m := bareWordRe.FindStringSubmatch(normalized); m != nil {
		if _, ok := loc.Exits[m[1]]; ok {
			confidence := 0.5
			if directionWords[m[1]] {
				confidence = 1.0
			}
			return command.Command{Type: command.TypeMove, Target: m[1], RawInput: input, Confidence: confidence}
		}
	}

	// Item commands validate their targets in the executor, not here.
	if m := takeRe.FindStringSubmatch(normalized); m != nil {
		return command.Command{Type: command.TypeTake, Target: m[1], RawInput: input, Confidence: 0.8}
	}
	if m := dropRe.FindStringSubmatch(normalized); m != nil {
		return command.Command{Type: command.TypeDrop, Target: m[1], RawInput: input, Confidence: 0.8}
	}
	if m := examineRe.FindStringSubmatch(normalized); m != nil {
		return command.Command{Type: command.TypeExamine, Target: m[1], RawInput: input, Confidence: 0.8}
	}
	if m := useOnRe.FindStringSubmatch(normalized); m != nil {
		return command.Command{Type: command.TypeUse, Target: m[1], SecondaryTarget: m[2], RawInput: input, Confidence: 0.7}
	}
	if m := useRe.FindStringSubmatch(normalized); m != nil {
		return command.Command{Type: command.TypeUse, Target: m[1], RawInput: input, Confidence: 0.7}
	}

	return command.Command{
		Type:         command.TypeUnknown,
		RawInput:     input,
		Confidence:   0.0,
		ErrorMessage: unknownMessage(input),
	}
}

func unknownMessage(input string) string {
	return fmt.Sprintf("I don't understand '%s'. Type 'help' for assistance.", input)
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
