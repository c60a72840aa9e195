package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crolly/mug/internal/defs"
	"github.com/crolly/mug/internal/project"
	"github.com/crolly/mug/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Compare the project tree with its model",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Regenerate the descriptor and recreate missing handler stubs",
	Args:  cobra.NoArgs,
	RunE:  runSync,
}

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the resources, groups and functions of the project",
	Args:  cobra.NoArgs,
	RunE:  runTree,
}

func init() {
	rootCmd.AddCommand(statusCmd, syncCmd, treeCmd)

	statusCmd.Flags().Bool("diff", false, "Print the pending descriptor changes")
	syncCmd.Flags().Bool("dry-run", false, "Show what sync would change without writing anything")
}

func runStatus(cmd *cobra.Command, _ []string) error {
	root, err := projectRoot(cmd)
	if err != nil {
		return err
	}
	st, err := deps.Engine.Status(commandContext(cmd), root)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	th := deps.Theme
	fmt.Fprintln(out, th.Title(st.Model.Name))
	if st.Clean() {
		fmt.Fprintln(out, th.Success("tree matches the model"))
		return nil
	}

	if st.DescriptorStale {
		fmt.Fprintln(out, th.Warning("serverless.yml is out of date, run mug sync"))
		if getBoolFlag(cmd, "diff") {
			fmt.Fprint(out, st.DescriptorDiff)
		}
	}
	if st.SAMTemplateStale {
		fmt.Fprintln(out, th.Warning(defs.SAMTemplateFile+" is out of date, run mug sync"))
	}
	for _, p := range st.Missing {
		fmt.Fprintln(out, th.Bullet("?", "missing "+p))
	}
	for _, p := range st.Orphans {
		fmt.Fprintln(out, th.Bullet("!", "orphaned "+p))
	}
	return nil
}

func runSync(cmd *cobra.Command, _ []string) error {
	root, err := projectRoot(cmd)
	if err != nil {
		return err
	}
	res, err := engineFor(cmd).Sync(commandContext(cmd), root)
	if err != nil {
		return err
	}
	printResult(cmd.OutOrStdout(), "Synchronized "+res.Model.Name, res)
	return nil
}

func runTree(cmd *cobra.Command, _ []string) error {
	root, err := projectRoot(cmd)
	if err != nil {
		return err
	}
	m, err := project.Load(root)
	if err != nil {
		return err
	}
	return ui.WriteProjectTree(cmd.OutOrStdout(), m)
}
