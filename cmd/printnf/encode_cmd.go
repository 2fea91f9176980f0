package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wippyai/wasm-printnf/capture"
	"github.com/wippyai/wasm-printnf/encoder"
)

func newEncodeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode FORMAT [ARG...]",
		Short: "Encode arguments against a format string.",
		Long: "Encode arguments against a format string and print the arena, the references and the rendered text. " +
			"Arguments are typed: u:42 i:-1 s:text null b:7 c:x f:1.5 p:0x10 {Rect}:0x20.",
		Example: `  printnf encode "r = %b, pos = %f" b:51 f:1.5
  printnf encode "%{Vec2}" {Vec2}:0x40 --json
  printnf encode "%s and %d" s:x i:7 --out frames.bin`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			encArgs, err := parseArgs(args[1:])
			if err != nil {
				return err
			}
			asJSON, err := cmd.Flags().GetBool("json")
			if err != nil {
				return err
			}
			outPath, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}

			enc := encoder.New(a.encoderOptions()...)
			msg, err := enc.Encode(args[0], encArgs...)
			if err != nil {
				return err
			}
			frame := capture.FromMessage(msg)

			if outPath != "" {
				if err := appendFrame(outPath, frame); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				b, err := frame.JSON()
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(b))
				return nil
			}
			text, err := a.renderer().RenderMessage(frame.Message())
			if err != nil {
				return err
			}
			c := colorizer(out)
			fmt.Fprintf(out, "%s %s\n", c.Color("[yellow]arena:"), hex.EncodeToString(frame.Arena))
			fmt.Fprintf(out, "%s  %v\n", c.Color("[yellow]refs:"), frame.Refs)
			fmt.Fprintf(out, "%s  %s\n", c.Color("[yellow]text:"), text)
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print the frame as JSON")
	cmd.Flags().StringP("out", "o", "", "append the frame to a capture file")
	return cmd
}

func appendFrame(path string, frame capture.Frame) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	if err := capture.NewWriter(f).Write(frame); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
