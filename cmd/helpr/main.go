package main

import (
	"os"
	"strings"

	"helpr/internal/cli"

	"github.com/spf13/cobra"
)

func rewriteHelpAsClaim(argv []string, isCommand func(string) bool) []string {
	// Convenience: `helpr help <zid>` works like `helpr claim <zid>`.
	//
	// Cobra owns `help <command>`, so we only rewrite when the token after
	// "help" is not a command name. `helpr help queue` still shows usage.
	//
	// Persistent flags may come first (e.g. `helpr --as tutor --zid t1 help z1`),
	// so we look for the first positional token, not argv[1].
	if len(argv) < 3 {
		return argv
	}

	valueFlags := map[string]bool{
		"--server":    true,
		"--state-dir": true,
		"--config":    true,
		"--format":    true,
		"--as":        true,
		"--zid":       true,
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}

		// First positional token.
		if a != "help" || i+1 >= len(argv) {
			return argv
		}
		next := strings.TrimSpace(argv[i+1])
		if next == "" || strings.HasPrefix(next, "-") || isCommand(next) {
			return argv
		}
		out := make([]string, 0, len(argv))
		out = append(out, argv[:i]...)
		out = append(out, "claim")
		out = append(out, argv[i+1:]...)
		return out
	}

	return argv
}

func commandLookup(root *cobra.Command) func(string) bool {
	return func(name string) bool {
		for _, c := range root.Commands() {
			if c.Name() == name || c.HasAlias(name) {
				return true
			}
		}
		return name == "help" || name == "completion"
	}
}

func main() {
	cmd := cli.NewRootCmd()
	os.Args = rewriteHelpAsClaim(os.Args, commandLookup(cmd))
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
