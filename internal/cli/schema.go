package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/joeaguilar/itr/internal/store"
)

// schema needs no database; it prints the DDL the store would apply.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Dump the current database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if outFormat == formatJSON {
			return printJSON(map[string]string{"schema": store.Schema})
		}
		// Not fmt: the DDL holds strftime directives that look like
		// formatting verbs, and it already ends with a newline.
		_, err := os.Stdout.WriteString(store.Schema)
		return err
	},
}
