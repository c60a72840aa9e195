package cli

import (
	"fmt"

	"github.com/lithammer/dedent"
	"github.com/spf13/cobra"

	"github.com/crolly/mug/internal/engine"
	"github.com/crolly/mug/internal/ui"
)

var removeCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a resource or function group with everything depending on it",
	Long: dedent.Dedent(`
		Remove a resource or function group. Its auth binding and functions
		are removed first, then the owner itself. The plan is shown and must
		be confirmed unless --yes is given.

		Examples:
		  mug remove order --dry-run
		  mug remove order --yes`),
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

var removeFunctionCmd = &cobra.Command{
	Use:   "function <name>",
	Short: "Remove a function",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemoveFunction,
}

var removeAuthCmd = &cobra.Command{
	Use:   "auth <target>",
	Short: "Remove the auth binding of a resource or function group",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemoveAuth,
}

func init() {
	rootCmd.AddCommand(removeCmd)
	removeCmd.AddCommand(removeFunctionCmd, removeAuthCmd)

	removeCmd.Flags().Bool("dry-run", false, "Show the removal plan without changing anything")
	removeCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")

	removeFunctionCmd.Flags().String("assignedTo", "", "Owning resource or function group (default: \"default\")")
}

func runRemove(cmd *cobra.Command, args []string) error {
	root, err := projectRoot(cmd)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()

	plan, err := deps.Engine.PlanRemove(ctx, root, args[0])
	if err != nil {
		return err
	}
	rendered, err := ui.RenderMarkdown(deps.Theme, deps.Headless, plan.Markdown())
	if err != nil {
		return err
	}
	fmt.Fprint(out, rendered)

	if getBoolFlag(cmd, "dry-run") {
		return nil
	}

	deps.Headless.AssumeYes(getBoolFlag(cmd, "yes"))
	ok, err := deps.Confirmer.Confirm(
		fmt.Sprintf("Remove %s?", plan.Target),
		fmt.Sprintf("%d steps, handler sources of removed functions are deleted", len(plan.Steps)),
	)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(out, deps.Theme.Muted("Nothing removed."))
		return nil
	}

	res, err := deps.Engine.Remove(ctx, root, args[0], engine.RemoveOptions{})
	if err != nil {
		return err
	}
	printResult(out, fmt.Sprintf("Removed %s", plan.Target), res)
	return nil
}

func runRemoveFunction(cmd *cobra.Command, args []string) error {
	root, err := projectRoot(cmd)
	if err != nil {
		return err
	}
	res, err := deps.Engine.RemoveFunction(commandContext(cmd), root, args[0], getStringFlag(cmd, "assignedTo"))
	if err != nil {
		return err
	}
	printResult(cmd.OutOrStdout(), fmt.Sprintf("Removed function %s", args[0]), res)
	return nil
}

func runRemoveAuth(cmd *cobra.Command, args []string) error {
	root, err := projectRoot(cmd)
	if err != nil {
		return err
	}
	res, err := deps.Engine.RemoveAuth(commandContext(cmd), root, args[0])
	if err != nil {
		return err
	}
	printResult(cmd.OutOrStdout(), fmt.Sprintf("Removed auth binding of %s", args[0]), res)
	return nil
}
