package cli

import (
	"github.com/spf13/cobra"
)

// NewRuleCmd создаёт группу команд для просмотра indexing rules.
func NewRuleCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rule",
		Aliases: []string{"rules"},
		Short:   "Inspect indexing rules",
	}

	cmd.AddCommand(
		newRuleListCmd(clientFn, outputFn),
		newRuleShowCmd(clientFn, outputFn),
	)

	return cmd
}

var ruleHeaders = []string{"IDENTIFIER", "TYPE", "DECISION_BASIS", "UPDATED"}

func ruleRow(r RuleResponse) []string {
	return []string{r.Identifier, r.IdentifierType, r.DecisionBasis, r.UpdatedAt}
}

func newRuleListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var basis string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List indexing rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			rules, err := client.ListRules(basis)
			if err != nil {
				return err
			}

			rows := make([][]string, len(rules))
			for i, r := range rules {
				rows[i] = ruleRow(r)
			}

			out.Print(ruleHeaders, rows, rules)
			return nil
		},
	}

	cmd.Flags().StringVar(&basis, "decision-basis", "", "Filter by decision basis (rules, never, always, offchain)")

	return cmd
}

func newRuleShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show IDENTIFIER",
		Short: "Show indexing rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			rule, err := client.GetRule(args[0])
			if err != nil {
				return err
			}

			out.Print(ruleHeaders, [][]string{ruleRow(*rule)}, rule)
			return nil
		},
	}
}
