package main

import (
	"fmt"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/wippyai/wasm-printnf/layout"
)

func newLayoutsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layouts [PATTERN...]",
		Short: "List the struct layouts %{NAME} can refer to.",
		Long:  "List the registered struct layouts, optionally only those whose name matches one of the wildcard patterns.",
		Example: `  printnf layouts
  printnf layouts 'Vec*' '*_List'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			globs := []glob.Glob{}
			for _, pattern := range args {
				g, err := glob.Compile(pattern)
				if err != nil {
					return err
				}
				globs = append(globs, g)
			}
			for _, s := range a.registry.Structs() {
				if matchAny(globs, s.Name) {
					printLayout(cmd, s)
				}
			}
			return nil
		},
	}
	return cmd
}

func matchAny(globs []glob.Glob, name string) bool {
	if len(globs) == 0 {
		return true
	}
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func printLayout(cmd *cobra.Command, s *layout.Struct) {
	out := cmd.OutOrStdout()
	c := colorizer(out)
	fmt.Fprintf(out, "%s (%d bytes)\n", c.Color("[cyan]"+s.Name), s.Size)
	for _, f := range s.Fields {
		typ := f.Kind.String()
		if f.Struct != nil {
			typ = f.Struct.Name
		}
		if f.Ref {
			typ = "*" + typ
		}
		fmt.Fprintf(out, "  %-4d %-10s %s\n", f.Offset, f.Name, typ)
	}
}
