package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/joeaguilar/itr/internal/store"
)

const dbFileName = ".itr.db"

// exitCode rides cobra's error return so a command can pick its own
// process exit status after printing output normally.
type exitCode int

func (e exitCode) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

// findDB resolves the database path for every command except init.
// The --db flag wins, then ITR_DB_PATH, then a db entry in .itr.yaml,
// then a walk from the working directory toward the filesystem root
// looking for an existing .itr.db.
func findDB() (string, error) {
	if dbFlag != "" {
		return dbFlag, nil
	}
	if p := os.Getenv("ITR_DB_PATH"); p != "" {
		return p, nil
	}
	if fileCfg != nil && fileCfg.DB != "" {
		return fileCfg.DB, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", store.IOError(err)
	}
	for {
		candidate := filepath.Join(dir, dbFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", store.NoDatabase()
		}
		dir = parent
	}
}

// openStore locates and opens the tracker database.
func openStore() (*store.Store, error) {
	path, err := findDB()
	if err != nil {
		return nil, err
	}
	return store.New(path)
}

// parseID parses a positional issue ID argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid issue ID: %s", arg)
	}
	return id, nil
}

// splitCSV splits a comma-separated flag value, trimming whitespace
// and dropping empty segments.
func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// readStdin drains standard input for piped bodies and imports.
func readStdin() ([]byte, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, store.IOError(err)
	}
	return data, nil
}

// marshalString renders v as compact single-line JSON without HTML
// escaping, so titles containing angle brackets survive untouched.
func marshalString(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", store.ParseError(err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func printJSON(v any) error {
	s, err := marshalString(v)
	if err != nil {
		return err
	}
	fmt.Println(s)
	return nil
}

// printError renders err on stderr. Coded store errors become a
// machine-readable envelope under -f json; everything else gets the
// ERROR: prefix agents grep for.
func printError(err error) {
	var serr *store.Error
	if outFormat == formatJSON && errors.As(err, &serr) {
		env := map[string]any{
			"error": serr.Message,
			"code":  string(serr.Code),
		}
		if s, merr := marshalString(env); merr == nil {
			fmt.Fprintln(os.Stderr, s)
			return
		}
	}
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
}

// emptyExit reports an empty result set and signals exit status 2 so
// scripted callers can tell "nothing to do" from a real failure. JSON
// mode prints an empty array on stdout; text modes print msg on
// stderr unless --quiet suppressed it.
func emptyExit(msg string) error {
	if outFormat == formatJSON {
		fmt.Println("[]")
	} else if !quietFlag {
		fmt.Fprintln(os.Stderr, msg)
	}
	return exitCode(2)
}
