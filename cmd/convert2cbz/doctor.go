// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/convert2cbz/internal/tools"
	"github.com/pdiddy/convert2cbz/pkg/types"
)

// toolCheck is one external dependency checked by doctor.
type toolCheck struct {
	purpose string
	detect  func() (string, error)
}

func systemChecks() []toolCheck {
	return []toolCheck{
		{
			purpose: "RAR based CBR files",
			detect: func() (string, error) {
				r, err := tools.DetectRAR()
				if err != nil {
					return "", err
				}
				return r.Name(), nil
			},
		},
		{
			purpose: "PDF files",
			detect: func() (string, error) {
				p, err := tools.DetectPoppler()
				if err != nil {
					return "", err
				}
				return "pdfinfo, " + p.Name(), nil
			},
		},
	}
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the external tools convert2cbz needs are installed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDoctor(cmd.OutOrStdout(), systemChecks())
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// runDoctor prints one line per check. It fails with ErrDependencyMissing
// when any tool is absent.
func runDoctor(w io.Writer, checks []toolCheck) error {
	missing := 0
	for _, c := range checks {
		name, err := c.detect()
		if err != nil {
			missing++
			fmt.Fprintf(w, "missing: %s (%v)\n", c.purpose, err)
			continue
		}
		fmt.Fprintf(w, "ok:      %s (%s)\n", c.purpose, name)
	}
	if missing > 0 {
		return fmt.Errorf("%w: %d of %d checks failed", types.ErrDependencyMissing, missing, len(checks))
	}
	return nil
}
