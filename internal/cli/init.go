package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joeaguilar/itr/internal/store"
)

var initAgentsMD bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new .itr.db database",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := initDBPath()

		_, statErr := os.Stat(path)
		created := statErr != nil

		s, err := store.New(path)
		if err != nil {
			return err
		}
		defer s.Close()

		// Seed stored urgency weights from .itr.yaml, without clobbering
		// overrides set on an existing database.
		if fileCfg != nil {
			for _, e := range fileCfg.UrgencyEntries() {
				if _, ok, err := s.ConfigGet(e.Key); err == nil && !ok {
					if err := s.ConfigSet(e.Key, strconv.FormatFloat(e.Value, 'f', -1, 64)); err != nil {
						return err
					}
				}
			}
		}

		if initAgentsMD {
			dir := filepath.Dir(path)
			if err := appendAgentsMD(dir); err != nil {
				return err
			}
		}

		if outFormat == formatJSON {
			return printJSON(map[string]any{
				"action":  "init",
				"path":    path,
				"created": created,
			})
		}
		fmt.Printf("INIT: %s\n", path)
		return nil
	},
}

// initDBPath resolves where init creates the database: --db wins, then
// ITR_DB_PATH, then .itr.db in the working directory. No walk-up here;
// init always targets the current project.
func initDBPath() string {
	if dbFlag != "" {
		return dbFlag
	}
	if p := os.Getenv("ITR_DB_PATH"); p != "" {
		return p
	}
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return filepath.Join(cwd, dbFileName)
}

const agentsBlock = `
## Issue Tracking

This project uses ` + "`itr`" + ` for issue tracking. Before starting work, run ` + "`itr ready -f json`" + `
to find the next actionable task. After completing work, run ` + "`itr close <ID> \"reason\"`" + `.
File discovered issues with ` + "`itr add`" + `. Always run ` + "`itr note <ID> \"summary\"`" + ` before ending a session.
`

// appendAgentsMD adds the issue-tracking section to AGENTS.md, creating
// the file if needed. A file that already has the section is left alone.
func appendAgentsMD(dir string) error {
	path := filepath.Join(dir, "AGENTS.md")

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return writeFile(path, strings.TrimLeft(agentsBlock, "\n"))
	}
	if err != nil {
		return store.IOError(err)
	}
	if strings.Contains(string(data), "## Issue Tracking") {
		return nil
	}
	return writeFile(path, string(data)+agentsBlock)
}

func writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return store.IOError(err)
	}
	return nil
}

func init() {
	initCmd.Flags().BoolVar(&initAgentsMD, "agents-md", false, "Also append itr instructions to AGENTS.md")
}
