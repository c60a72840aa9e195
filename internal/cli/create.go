package cli

import (
	"fmt"

	"github.com/lithammer/dedent"
	"github.com/spf13/cobra"

	"github.com/crolly/mug/internal/engine"
)

var createCmd = &cobra.Command{
	Use:   "create <projectName>",
	Short: "Create a new serverless project",
	Long: dedent.Dedent(`
		Create a new project directory with an empty model, a go.mod,
		the Makefile and serverless.yml.

		Examples:
		  mug create shop
		  mug create shop --import-path github.com/acme/shop --region us-east-1
		  mug create shop --dir ~/src --force`),
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().String("dir", "", "Parent directory of the project (default: current directory)")
	createCmd.Flags().String("import-path", "", "Go module path of the project (default: project name)")
	createCmd.Flags().String("region", "", "AWS region (default: from config)")
	createCmd.Flags().String("runtime", "", "Lambda runtime (default: from config)")
	createCmd.Flags().Bool("dry-run", false, "Show the resulting descriptor without writing anything")
	createCmd.Flags().Bool("force", false, "Create into an existing directory, keeping files already there")
}

func runCreate(cmd *cobra.Command, args []string) error {
	opts := engine.CreateOptions{
		Dir:        getStringFlag(cmd, "dir"),
		Name:       args[0],
		ImportPath: getStringFlag(cmd, "import-path"),
		Region:     getStringFlag(cmd, "region"),
		Runtime:    getStringFlag(cmd, "runtime"),
		Force:      getBoolFlag(cmd, "force"),
	}
	cfg := currentConfig()
	if opts.Region == "" {
		opts.Region = cfg.Project.Region
	}
	if opts.Runtime == "" {
		opts.Runtime = cfg.Project.Runtime
	}

	res, err := engineFor(cmd).Create(commandContext(cmd), opts)
	if err != nil {
		return err
	}
	printResult(cmd.OutOrStdout(), fmt.Sprintf("Created project %s in %s", res.Model.Name, opts.ProjectRoot()), res)
	return nil
}
