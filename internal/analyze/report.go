// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	json "github.com/goccy/go-json"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/convert2cbz/pkg/types"
)

// Write renders r to w in the given format.
func Write(w io.Writer, r *types.Report, format types.ReportFormat) error {
	switch format {
	case types.ReportJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case types.ReportYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case types.ReportText, "":
		return writeText(w, r)
	default:
		return fmt.Errorf("%w: report format %q", types.ErrInvalidOption, format)
	}
}

func writeText(w io.Writer, r *types.Report) error {
	formats := make([]string, len(r.Formats))
	for i, f := range r.Formats {
		formats[i] = strings.ToUpper(string(f))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "File:    %s\n", r.Path)
	fmt.Fprintf(&b, "Kind:    %s\n", r.Kind)
	fmt.Fprintf(&b, "Pages:   %d\n", r.PageCount)
	fmt.Fprintf(&b, "Formats: %s\n", strings.Join(formats, ", "))
	if r.TotalSize > 0 {
		fmt.Fprintf(&b, "Size:    %s\n", humanize.Bytes(uint64(r.TotalSize)))
	}
	if r.DPI != nil {
		fmt.Fprintf(&b, "Min DPI: %d\n", r.DPI.Min)
		fmt.Fprintf(&b, "Max DPI: %d\n", r.DPI.Max)
		fmt.Fprintf(&b, "Average DPI: %d\n", r.DPI.Average)
		fmt.Fprintf(&b, "Auto DPI: %d\n", r.DPI.AutoDPI)
	}

	if len(r.Pages) > 0 {
		b.WriteString("\n")
		if r.Kind == types.KindPDF {
			fmt.Fprintf(&b, "%-5s  %-6s  %-11s  %s\n", "Page", "Format", "Pixels", "Points")
			b.WriteString(strings.Repeat("-", 48) + "\n")
			for _, p := range r.Pages {
				fmt.Fprintf(&b, "%-5d  %-6s  %-11s  %.1f x %.1f\n",
					p.Index+1, p.Format, dims(p.Width, p.Height), p.WidthPt, p.HeightPt)
			}
		} else {
			fmt.Fprintf(&b, "%-5s  %-6s  %-11s  %-9s  %-16s  %s\n", "Page", "Format", "Pixels", "Size", "Checksum", "Entry")
			b.WriteString(strings.Repeat("-", 80) + "\n")
			for _, p := range r.Pages {
				fmt.Fprintf(&b, "%-5d  %-6s  %-11s  %-9s  %-16s  %s\n",
					p.Index+1, p.Format, dims(p.Width, p.Height), humanize.Bytes(uint64(p.Size)), p.Checksum, p.Name)
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func dims(w, h int) string {
	if w == 0 && h == 0 {
		return "?"
	}
	return fmt.Sprintf("%dx%d", w, h)
}
