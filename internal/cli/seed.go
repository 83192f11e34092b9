package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import recipes, ingredients, links and history from a JSON catalog",
		Run:   runSeed,
	}

	cmd.Flags().StringP("file", "f", "", "Catalog file")
	_ = cmd.MarkFlagRequired("file")

	RootCmd.AddCommand(cmd)
}

func runSeed(cmd *cobra.Command, args []string) {
	path, _ := cmd.Flags().GetString("file")

	e, err := openEnv(cmd)
	if err != nil {
		exitErr("setup", err)
	}
	defer e.close()

	if _, err := e.app.Seed(cmd.Context(), path); err != nil {
		e.close()
		exitErr("seed", err)
	}
}
