package cli

import (
	"fmt"

	"github.com/lithammer/dedent"
	"github.com/spf13/cobra"

	"github.com/crolly/mug/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:   "mug",
	Short: "Scaffold and evolve serverless Go projects",
	Long: dedent.Dedent(`
		mug keeps a serverless Go project in step with a declarative model.

		Resources (DynamoDB backed entities), function groups and their HTTP
		functions are recorded in mug.yaml. Every command updates the model,
		regenerates serverless.yml and the Makefile, and creates or refreshes
		the handler stubs under functions/. Code you write outside the
		generated regions is never overwritten.`),
	Version:       version.GetVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setupDependencies(cmd)
	},
}

// Execute initializes dependencies and runs the root command.
func Execute() error {
	InitDependencies()
	err := rootCmd.Execute()
	if err != nil && deps != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), deps.Theme.Error(err.Error()))
	}
	return err
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("mug %s\n", version.GetFullVersion()))

	rootCmd.PersistentFlags().StringP("project", "p", "", "Project root directory (default: current directory)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Never prompt; fail where a confirmation is required")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
}
