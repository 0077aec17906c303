package command

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

type HelpCmd struct {
	router *Router
}

func NewHelpCmd(router *Router) *HelpCmd {
	return &HelpCmd{router: router}
}

func (c *HelpCmd) Name() string        { return "help" }
func (c *HelpCmd) Description() string { return "List available commands" }

func (c *HelpCmd) Execute(_ context.Context, _ string, _ []string) (string, error) {
	cmds := c.router.ListCommands()
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name() < cmds[j].Name() })

	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, cmd := range cmds {
		fmt.Fprintf(&b, "/%s — %s\n", cmd.Name(), cmd.Description())
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
