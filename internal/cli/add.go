package cli

import (
	"fmt"

	"github.com/lithammer/dedent"
	"github.com/spf13/cobra"

	"github.com/crolly/mug/internal/engine"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a resource, function group, function or auth binding",
}

var addResourceCmd = &cobra.Command{
	Use:   "resource <name>",
	Short: "Add a DynamoDB backed resource",
	Long: dedent.Dedent(`
		Add a resource backed by its own DynamoDB table.

		Attributes are given as name:type pairs using Go types. The key
		defaults to a generated "id" hash key.

		Examples:
		  mug add resource order --attributes customer:string,total:float64 --crud
		  mug add resource event --attributes day:string,at:time.Time --key day:hash,at:range
		  mug add resource log --billing provisioned --read 5 --write 5`),
	Args: cobra.ExactArgs(1),
	RunE: runAddResource,
}

var addGroupCmd = &cobra.Command{
	Use:   "group <name>",
	Short: "Add a function group",
	Args:  cobra.ExactArgs(1),
	RunE:  runAddGroup,
}

var addFunctionCmd = &cobra.Command{
	Use:   "function <name>",
	Short: "Add a function to a resource or function group",
	Long: dedent.Dedent(`
		Add an HTTP function. Without --assignedTo it joins the "default"
		function group, which is created on first use.

		Examples:
		  mug add function health
		  mug add function checkout --assignedTo order --method post --path orders/checkout`),
	Args: cobra.ExactArgs(1),
	RunE: runAddFunction,
}

var addAuthCmd = &cobra.Command{
	Use:   "auth <target>",
	Short: "Protect a resource or function group with a Cognito authorizer",
	Args:  cobra.ExactArgs(1),
	RunE:  runAddAuth,
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.AddCommand(addResourceCmd, addGroupCmd, addFunctionCmd, addAuthCmd)
	addCmd.PersistentFlags().Bool("dry-run", false, "Show the resulting changes without writing anything")

	addResourceCmd.Flags().StringSlice("attributes", nil, "Attributes as name:type pairs")
	addResourceCmd.Flags().StringSlice("key", nil, "Key attributes as name:hash[,name:range]")
	addResourceCmd.Flags().String("billing", "", "Billing mode: ondemand or provisioned (default: provisioned)")
	addResourceCmd.Flags().Int64("read", 0, "Provisioned read capacity")
	addResourceCmd.Flags().Int64("write", 0, "Provisioned write capacity")
	addResourceCmd.Flags().Bool("crud", false, "Add create, read, update, delete and list functions")

	addFunctionCmd.Flags().String("assignedTo", "", "Owning resource or function group (default: \"default\")")
	addFunctionCmd.Flags().String("path", "", "HTTP path (default: derived from owner and name)")
	addFunctionCmd.Flags().String("method", "", "HTTP method (default: get)")
	addFunctionCmd.Flags().Bool("no-cors", false, "Disable CORS for the function")

	addAuthCmd.Flags().String("user-pool-arn", "", "ARN of the Cognito user pool")
	addAuthCmd.Flags().StringSlice("exclude", nil, "Functions of the target served without authorization")
}

func runAddResource(cmd *cobra.Command, args []string) error {
	root, err := projectRoot(cmd)
	if err != nil {
		return err
	}
	attrs, err := parseAttributes(getStringSliceFlag(cmd, "attributes"))
	if err != nil {
		return err
	}
	hash, rng, err := parseKey(getStringSliceFlag(cmd, "key"))
	if err != nil {
		return err
	}
	read, _ := cmd.Flags().GetInt64("read")
	write, _ := cmd.Flags().GetInt64("write")

	res, err := engineFor(cmd).AddResource(commandContext(cmd), root, engine.AddResourceOptions{
		Name:       args[0],
		Attributes: attrs,
		HashKey:    hash,
		RangeKey:   rng,
		Billing:    getStringFlag(cmd, "billing"),
		Read:       read,
		Write:      write,
		CRUD:       getBoolFlag(cmd, "crud"),
	})
	if err != nil {
		return err
	}
	printResult(cmd.OutOrStdout(), fmt.Sprintf("Added resource %s", args[0]), res)
	return nil
}

func runAddGroup(cmd *cobra.Command, args []string) error {
	root, err := projectRoot(cmd)
	if err != nil {
		return err
	}
	res, err := engineFor(cmd).AddFunctionGroup(commandContext(cmd), root, args[0])
	if err != nil {
		return err
	}
	printResult(cmd.OutOrStdout(), fmt.Sprintf("Added function group %s", args[0]), res)
	return nil
}

func runAddFunction(cmd *cobra.Command, args []string) error {
	root, err := projectRoot(cmd)
	if err != nil {
		return err
	}
	opts := engine.AddFunctionOptions{
		Name:       args[0],
		AssignedTo: getStringFlag(cmd, "assignedTo"),
		Path:       getStringFlag(cmd, "path"),
		Method:     getStringFlag(cmd, "method"),
	}
	if getBoolFlag(cmd, "no-cors") {
		off := false
		opts.CORS = &off
	}

	res, err := engineFor(cmd).AddFunction(commandContext(cmd), root, opts)
	if err != nil {
		return err
	}
	printResult(cmd.OutOrStdout(), fmt.Sprintf("Added function %s", args[0]), res)
	return nil
}

func runAddAuth(cmd *cobra.Command, args []string) error {
	root, err := projectRoot(cmd)
	if err != nil {
		return err
	}
	res, err := engineFor(cmd).AddAuth(commandContext(cmd), root, engine.AddAuthOptions{
		Target:      args[0],
		UserPoolARN: getStringFlag(cmd, "user-pool-arn"),
		Exclude:     getStringSliceFlag(cmd, "exclude"),
	})
	if err != nil {
		return err
	}
	printResult(cmd.OutOrStdout(), fmt.Sprintf("Bound authorizer to %s", args[0]), res)
	return nil
}
