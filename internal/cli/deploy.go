package cli

import (
	"fmt"

	"github.com/lithammer/dedent"
	"github.com/spf13/cobra"

	"github.com/crolly/mug/internal/config"
	"github.com/crolly/mug/internal/external"
	"github.com/crolly/mug/internal/project"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Build all handlers and deploy them with the Serverless Framework",
	Args:  cobra.NoArgs,
	RunE:  runDeploy,
}

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Build debug binaries and serve them with sam local",
	Long: dedent.Dedent(`
		Refresh template.yml from the model, build unoptimized handlers
		into debug/ and start the AWS SAM local API against them.`),
	Args: cobra.NoArgs,
	RunE: runDebug,
}

func init() {
	rootCmd.AddCommand(deployCmd, debugCmd)

	deployCmd.Flags().String("stage", "", "Deployment stage (default: from config)")
}

func runDeploy(cmd *cobra.Command, _ []string) error {
	cfg := currentConfig()
	stage := getStringFlag(cmd, "stage")
	if stage == "" {
		stage = cfg.Project.Stage
	}
	return runTask(cmd, "Deployed", external.DeploySteps(cfg.ExternalTools(), stage))
}

func runDebug(cmd *cobra.Command, _ []string) error {
	root, err := projectRoot(cmd)
	if err != nil {
		return err
	}
	// sam serves what template.yml describes, so it must match the model.
	if _, err := deps.Engine.Sync(commandContext(cmd), root); err != nil {
		return err
	}
	return runTask(cmd, "Local API stopped", external.DebugSteps(currentConfig().ExternalTools()))
}

// runTask runs steps in the project root behind a spinner. The model is
// loaded first so tasks never run outside a project.
func runTask(cmd *cobra.Command, done string, steps []external.Step) error {
	root, err := projectRoot(cmd)
	if err != nil {
		return err
	}
	m, err := project.Load(root)
	if err != nil {
		return err
	}

	spin := deps.Progress.Spinner(steps[0].Name)
	err = external.RunSteps(commandContext(cmd), deps.Runner, root, steps, func(s external.Step) {
		deps.Logger.Debug("running step", "step", s.Name, "project", m.Name)
		spin.SetTitle(s.Name)
	})
	spin.Stop()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), deps.Theme.Success(fmt.Sprintf("%s %s", done, m.Name)))
	return nil
}

// currentConfig returns the loaded configuration or the defaults.
func currentConfig() *config.Config {
	if deps.Config != nil {
		if cfg := deps.Config.Get(); cfg != nil {
			return cfg
		}
	}
	return config.NewDefaultConfig()
}
