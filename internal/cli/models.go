package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/HerbHall/crias/pkg/llm/providers"
)

func newModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List supported models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MODEL\tPROVIDER")
			for _, m := range providers.Models() {
				p, err := providers.ProviderFor(m)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\n", m, p)
			}
			return tw.Flush()
		},
	}
}
