package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewActionCmd создаёт группу команд для просмотра actions.
func NewActionCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "action",
		Aliases: []string{"actions"},
		Short:   "Inspect queued and finished actions",
	}

	cmd.AddCommand(
		newActionListCmd(clientFn, outputFn),
		newActionShowCmd(clientFn, outputFn),
	)

	return cmd
}

func newActionListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var status string
	var deployment string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			actions, total, err := client.ListActions(ListActionsOpts{
				Status:     status,
				Deployment: deployment,
				Limit:      limit,
			})
			if err != nil {
				return err
			}

			headers := []string{"ID", "TYPE", "DEPLOYMENT", "NODE", "STATUS", "ATTEMPT", "CREATED"}
			rows := make([][]string, len(actions))
			for i, a := range actions {
				rows[i] = []string{a.ID, a.Type, a.Deployment, a.Node, a.Status, strconv.Itoa(a.Attempt), a.CreatedAt}
			}

			out.Print(headers, rows, actions)
			if total > len(actions) {
				out.Success(fmt.Sprintf("Showing %d of %d actions", len(actions), total))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (QUEUED, RUNNING, SUCCEEDED, FAILED)")
	cmd.Flags().StringVar(&deployment, "deployment", "", "Filter by deployment")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")

	return cmd
}

func newActionShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show action details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			action, err := client.GetAction(args[0])
			if err != nil {
				return err
			}

			printAction(out, action)
			return nil
		},
	}
}

// printAction выводит один action.
func printAction(out *Output, a *ActionResponse) {
	out.Print(
		[]string{"ID", "TYPE", "NAME", "DEPLOYMENT", "NODE", "STATUS", "ATTEMPT", "ERROR"},
		[][]string{{a.ID, a.Type, a.Name, a.Deployment, a.Node, a.Status, strconv.Itoa(a.Attempt), a.Error}},
		a,
	)
}
