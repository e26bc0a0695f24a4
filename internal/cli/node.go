package cli

import (
	"github.com/spf13/cobra"
)

// NewNodeCmd создаёт группу команд для пула узлов.
func NewNodeCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "node",
		Aliases: []string{"nodes"},
		Short:   "Inspect the index node pool",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List configured index nodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			nodes, err := client.ListNodes()
			if err != nil {
				return err
			}

			rows := make([][]string, len(nodes))
			for i, n := range nodes {
				rows[i] = []string{n.ID}
			}

			out.Print([]string{"NODE"}, rows, nodes)
			return nil
		},
	})

	return cmd
}
