package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run database integrity checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		report, err := s.RunDoctor(doctorFix)
		if err != nil {
			return err
		}

		if outFormat == formatJSON {
			if err := printJSON(report); err != nil {
				return err
			}
		} else if report.Clean {
			fmt.Println("DOCTOR: All clean")
		} else {
			for _, p := range report.Problems {
				marker := ""
				if p.Fixable {
					marker = " [fixable]"
				}
				fmt.Printf("PROBLEM: [%s]%s %s\n", p.Kind, marker, p.Message)
			}
			for _, f := range report.Fixed {
				fmt.Printf("FIXED: %s\n", f)
			}
		}

		// Problems found mean exit 1 even when they were just repaired,
		// so monitoring notices the database needed attention.
		if !report.Clean {
			return exitCode(1)
		}
		return nil
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Auto-fix safe issues")
}
