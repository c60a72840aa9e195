package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var moveCmd = &cobra.Command{
	Use:   "move",
	Short: "Move project entities",
}

var moveFunctionCmd = &cobra.Command{
	Use:   "function <name>",
	Short: "Move a function to another resource or function group",
	Long: `Move a function to another owner. The handler source moves along;
an untouched stub is regenerated for its new owner.`,
	Args: cobra.ExactArgs(1),
	RunE: runMoveFunction,
}

func init() {
	rootCmd.AddCommand(moveCmd)
	moveCmd.AddCommand(moveFunctionCmd)

	moveFunctionCmd.Flags().String("from", "", "Current owner (default: \"default\")")
	moveFunctionCmd.Flags().String("to", "", "New owner")
	moveFunctionCmd.Flags().Bool("dry-run", false, "Show the resulting changes without writing anything")
	_ = moveFunctionCmd.MarkFlagRequired("to")
}

func runMoveFunction(cmd *cobra.Command, args []string) error {
	root, err := projectRoot(cmd)
	if err != nil {
		return err
	}
	to := getStringFlag(cmd, "to")
	res, err := engineFor(cmd).MoveFunction(commandContext(cmd), root, args[0], getStringFlag(cmd, "from"), to)
	if err != nil {
		return err
	}
	printResult(cmd.OutOrStdout(), fmt.Sprintf("Moved function %s to %s", args[0], to), res)
	return nil
}
