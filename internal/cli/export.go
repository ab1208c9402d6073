package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joeaguilar/itr/internal/store"
)

var (
	exportFormat string
	importFile   string
	importMerge  bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the full database",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		records, err := s.ExportRecords()
		if err != nil {
			return err
		}

		if exportFormat == "json" {
			var buf bytes.Buffer
			enc := json.NewEncoder(&buf)
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			if err := enc.Encode(records); err != nil {
				return store.ParseError(err)
			}
			fmt.Print(buf.String())
			return nil
		}

		// JSONL: one record per line.
		for _, rec := range records {
			line, err := marshalString(rec)
			if err != nil {
				return err
			}
			fmt.Println(line)
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import issues from JSONL or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if importFile != "" {
			data, err = os.ReadFile(importFile)
			if err != nil {
				return store.IOError(err)
			}
		} else {
			data, err = readStdin()
			if err != nil {
				return err
			}
		}

		records, err := parseImport(data)
		if err != nil {
			return err
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		imported, skipped, err := s.Import(records, importMerge)
		if err != nil {
			return err
		}

		if outFormat == formatJSON {
			return printJSON(map[string]any{
				"action":   "import",
				"imported": imported,
				"skipped":  skipped,
			})
		}
		fmt.Printf("IMPORT: %d imported, %d skipped\n", imported, skipped)
		return nil
	},
}

// parseImport accepts both export shapes: a JSON array or JSONL.
func parseImport(data []byte) ([]store.ExportRecord, error) {
	input := strings.TrimSpace(string(data))

	if strings.HasPrefix(input, "[") {
		var records []store.ExportRecord
		if err := json.Unmarshal([]byte(input), &records); err != nil {
			return nil, store.ParseError(err)
		}
		return records, nil
	}

	var records []store.ExportRecord
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var rec store.ExportRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, store.ParseError(err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "export-format", "jsonl", "Export format: jsonl|json")
	importCmd.Flags().StringVar(&importFile, "file", "", "Input file path (or stdin)")
	importCmd.Flags().BoolVar(&importMerge, "merge", false, "Skip existing IDs instead of erroring")
}
