package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joeaguilar/itr/internal/store"
	"github.com/joeaguilar/itr/internal/urgency"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage per-project configuration",
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		stored, err := s.ConfigList()
		if err != nil {
			return err
		}
		overrides := make(map[string]string, len(stored))
		for _, e := range stored {
			overrides[e.Key] = e.Value
		}

		type entry struct {
			key    string
			value  string
			custom bool
		}
		var entries []entry
		for _, d := range urgency.DefaultsMap() {
			if v, ok := overrides[d.Key]; ok {
				entries = append(entries, entry{d.Key, v, true})
			} else {
				entries = append(entries, entry{d.Key, formatWeight(d.Value), false})
			}
		}
		// Stored keys outside the urgency namespace list after the
		// known weights.
		for _, e := range stored {
			if !strings.HasPrefix(e.Key, "urgency.") {
				entries = append(entries, entry{e.Key, e.Value, true})
			}
		}

		if outFormat == formatJSON {
			out := make(map[string]string, len(entries))
			for _, e := range entries {
				out[e.key] = e.value
			}
			return printJSON(out)
		}
		for _, e := range entries {
			marker := ""
			if e.custom {
				marker = " *"
			}
			fmt.Printf("%s=%s%s\n", e.key, e.value, marker)
		}
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a config value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		value, ok, err := s.ConfigGet(key)
		if err != nil {
			return err
		}
		if !ok {
			found := false
			for _, d := range urgency.DefaultsMap() {
				if d.Key == key {
					value = formatWeight(d.Value)
					found = true
					break
				}
			}
			if !found {
				return store.NotFound(-1)
			}
		}

		if outFormat == formatJSON {
			return printJSON(map[string]string{"key": key, "value": value})
		}
		fmt.Printf("%s=%s\n", key, value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.ConfigSet(key, value); err != nil {
			return err
		}

		if outFormat == formatJSON {
			return printJSON(map[string]any{"action": "set", "key": key, "value": value})
		}
		fmt.Printf("SET: %s=%s\n", key, value)
		return nil
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore all defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.ConfigReset(); err != nil {
			return err
		}

		if outFormat == formatJSON {
			return printJSON(map[string]any{"action": "reset"})
		}
		fmt.Println("CONFIG: Reset to defaults")
		return nil
	},
}

// formatWeight renders a default weight the way it would be typed:
// no trailing zeros, no exponent.
func formatWeight(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func init() {
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configResetCmd)
}
