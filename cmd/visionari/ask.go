package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func runAsk(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	if imagePath != "" {
		if _, err := rt.ctrl.SelectImage(imagePath); err != nil {
			return describe(err)
		}
	}

	text, err := rt.ctrl.Submit(cmd.Context(), rt.cfg.APIKey, strings.Join(args, " "))
	if err != nil {
		return describe(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
