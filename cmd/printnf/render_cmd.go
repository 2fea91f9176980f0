package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wippyai/wasm-printnf/capture"
)

func newRenderCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Render every frame of a capture file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			r := a.renderer()
			rd := capture.NewReader(f)
			out := cmd.OutOrStdout()
			for {
				frame, err := rd.Next()
				if err == io.EOF {
					return nil
				}
				if err != nil {
					return err
				}
				text, err := r.RenderMessage(frame.Message())
				if err != nil {
					return err
				}
				fmt.Fprintln(out, text)
			}
		},
	}
	return cmd
}
