package cli

import (
	"github.com/spf13/cobra"

	"menu-planner/internal/app"
)

func init() {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the weekly menus and shopping list",
		Run:   runGenerate,
	}

	cmd.Flags().StringP("plan", "p", "", "Plan URL or HTML file (default: plan_source from the configuration)")
	cmd.Flags().Bool("no-persist", false, "Do not write the realistic menu to the history or the sink")
	cmd.Flags().Bool("no-notify", false, "Do not announce the menus on Telegram")

	RootCmd.AddCommand(cmd)
}

func runGenerate(cmd *cobra.Command, args []string) {
	plan, _ := cmd.Flags().GetString("plan")
	noPersist, _ := cmd.Flags().GetBool("no-persist")
	noNotify, _ := cmd.Flags().GetBool("no-notify")

	e, err := openEnv(cmd)
	if err != nil {
		exitErr("setup", err)
	}
	defer e.close()

	_, err = e.app.GenerateMenu(cmd.Context(), app.GenerateOptions{
		PlanSource: plan,
		Persist:    !noPersist,
		Notify:     !noNotify,
	})
	if err != nil {
		e.close()
		exitErr("generate", err)
	}
}
