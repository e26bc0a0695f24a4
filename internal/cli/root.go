package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd создаёт корневую команду со всеми группами.
// PersistentFlags (--api-url, --json) добавляет вызывающая сторона.
func NewRootCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	root := &cobra.Command{
		Use:           "subgraphd",
		Short:         "Subgraphd CLI — deployment orchestration for index nodes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		NewDeploymentCmd(clientFn, outputFn),
		NewActionCmd(clientFn, outputFn),
		NewRuleCmd(clientFn, outputFn),
		NewNodeCmd(clientFn, outputFn),
	)

	return root
}
