package cli

import "github.com/spf13/cobra"

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "astrid",
		Short:   "Astrid - resolve OpenAPI documents into a typed intermediate representation",
		Version: "1.0.0",

		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.AddCommand(ResolveCommand())

	return root
}
