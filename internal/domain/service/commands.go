package service

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// SlashCommand binds a chat command to an action with fixed parameters.
type SlashCommand struct {
	Name           string
	Action         string
	Parameters     map[string]string
	RequireConfirm bool
	Description    string
	// ArgParam, when set, receives any text following the command.
	ArgParam string
}

// DefaultCommands returns the built-in command table.
func DefaultCommands() []SlashCommand {
	return []SlashCommand{
		{
			Name:           "shutdown",
			Action:         "shutdown_server",
			Parameters:     map[string]string{"environment": "prod"},
			RequireConfirm: true,
			Description:    "Shut down the production server",
		},
		{
			Name:        "lightsoff",
			Action:      "lights_off",
			Description: "Turn off all lights",
		},
		{
			Name:        "assess",
			Action:      "assess_guest",
			ArgParam:    "guest",
			Description: "Assess a guest by name, e.g. /assess Jane Doe",
		},
	}
}

// params merges the command's fixed parameters with its argument text.
func (c SlashCommand) params(args string) map[string]string {
	p := make(map[string]string, len(c.Parameters)+1)
	maps.Copy(p, c.Parameters)
	if c.ArgParam != "" && args != "" {
		p[c.ArgParam] = args
	}
	return p
}

// parseCommand splits "/name@bot some args" into "name", "bot" and
// "some args". target is empty when the command names no bot.
func parseCommand(text string) (name, target, args string) {
	text = strings.TrimPrefix(strings.TrimSpace(text), "/")
	head, rest, _ := strings.Cut(text, " ")
	head, target, _ = strings.Cut(head, "@")
	return strings.ToLower(head), target, strings.TrimSpace(rest)
}

// formatParams renders parameters one per line in key order.
func formatParams(params map[string]string) string {
	keys := slices.Sorted(maps.Keys(params))
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("• %s: %s", k, params[k]))
	}
	return strings.Join(lines, "\n")
}
