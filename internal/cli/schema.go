package cli

import (
	"github.com/makeitso-dev/mis/application/schema"
	"github.com/spf13/cobra"
)

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the context document passed to plugins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := schema.ContextSchema()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if _, err := out.Write(doc); err != nil {
				return err
			}
			_, err = out.Write([]byte("\n"))
			return err
		},
	}
}
