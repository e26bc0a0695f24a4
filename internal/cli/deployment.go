package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewDeploymentCmd создаёт группу команд для управления deployments.
func NewDeploymentCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "deployment",
		Aliases: []string{"deployments", "dep"},
		Short:   "Ensure or remove deployments",
	}

	cmd.AddCommand(
		newDeploymentEnsureCmd(clientFn, outputFn),
		newDeploymentRemoveCmd(clientFn, outputFn),
	)

	return cmd
}

func newDeploymentEnsureCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var name string
	var node string

	cmd := &cobra.Command{
		Use:   "ensure DEPLOYMENT",
		Short: "Queue an ensure action (create, deploy, reassign)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			action, err := client.EnsureDeployment(EnsureDeploymentRequest{
				Deployment: args[0],
				Name:       name,
				Node:       node,
			})
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Ensure queued: %s", action.ID))
			printAction(out, action)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Subgraph name (default indexer-agent/<last 10 chars>)")
	cmd.Flags().StringVar(&node, "node", "", "Target node (random pool member if not specified)")

	return cmd
}

func newDeploymentRemoveCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "remove DEPLOYMENT",
		Short: "Queue a remove action (unassign and drop the rule)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			action, err := client.RemoveDeployment(args[0])
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Remove queued: %s", action.ID))
			printAction(out, action)
			return nil
		},
	}
}
