package cmd

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/corey/ackeys/internal/app"
	"github.com/corey/ackeys/internal/domain/automaton"
	"github.com/corey/ackeys/internal/metrics"
)

// ANSI color codes for terminal output.
const (
	colorReset   = "\033[0m"
	colorBold    = "\033[1m"
	colorCyan    = "\033[36m"
	colorMagenta = "\033[35m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorRed     = "\033[31m"
	colorGray    = "\033[90m"
)

// paint wraps s in color when color output is on.
func paint(color, s string) string {
	if !useColor {
		return s
	}
	return color + s + colorReset
}

// formatCount formats the registry size line printed after mutations.
//
//	⚡ 1,204 keywords
func formatCount(n int) string {
	noun := "keywords"
	if n == 1 {
		noun = "keyword"
	}
	return paint(colorBold, fmt.Sprintf("⚡ %s %s", humanize.Comma(int64(n)), noun)) + "\n"
}

// formatMatches formats scan results, one per line, with rune offsets when
// positions is set.
//
//	2-4    he
//	1-4    she
func formatMatches(matches []automaton.Match, positions bool) string {
	var sb strings.Builder
	for _, m := range matches {
		if positions {
			sb.WriteString(paint(colorGray, fmt.Sprintf("%-6s ", fmt.Sprintf("%d-%d", m.Start, m.End))))
		}
		sb.WriteString(paint(colorCyan, m.Keyword))
		sb.WriteString("\n")
	}
	return sb.String()
}

// storeInfo is what info reports beyond the automaton itself.
type storeInfo struct {
	Backend string
	Where   string // file path or redis address
	Size    int64  // bytes on disk, 0 when unknown
}

// formatInfo formats automaton size for terminal display.
func formatInfo(info automaton.Info, st storeInfo) string {
	var sb strings.Builder
	sb.WriteString(paint(colorBold, "⚡ ackeys "+info.Name) + "\n")
	sb.WriteString(fmt.Sprintf("  Keywords:  %s\n", humanize.Comma(int64(info.Keywords))))
	sb.WriteString(fmt.Sprintf("  Nodes:     %s\n", humanize.Comma(int64(info.Nodes))))
	sb.WriteString(fmt.Sprintf("  Backend:   %s\n", paint(colorMagenta, st.Backend)))
	if st.Where != "" {
		sb.WriteString(fmt.Sprintf("  Location:  %s\n", st.Where))
	}
	if st.Size > 0 {
		sb.WriteString(fmt.Sprintf("  Size:      %s\n", humanize.Bytes(uint64(st.Size))))
	}
	return sb.String()
}

// formatSamples formats gathered metrics, one sample per line.
func formatSamples(samples []metrics.Sample) string {
	var sb strings.Builder
	sb.WriteString(paint(colorBold, "⚡ metrics") + "\n")
	for _, s := range samples {
		sb.WriteString("  " + s.String() + "\n")
	}
	return sb.String()
}

// formatSync formats one sync outcome.
//
//	⚡ synced: +2 -1 │ 14 keywords
func formatSync(res app.SyncResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s │ %s keywords\n",
		paint(colorBold, fmt.Sprintf("⚡ synced: %s %s",
			paint(colorGreen, fmt.Sprintf("+%d", len(res.Added))),
			paint(colorRed, fmt.Sprintf("-%d", len(res.Removed))))),
		humanize.Comma(int64(res.Keywords))))
	for _, k := range res.Added {
		sb.WriteString("  " + paint(colorGreen, "+ "+k) + "\n")
	}
	for _, k := range res.Removed {
		sb.WriteString("  " + paint(colorRed, "- "+k) + "\n")
	}
	return sb.String()
}

// formatReport formats a verify report.
func formatReport(r *automaton.Report) string {
	var sb strings.Builder
	summary := fmt.Sprintf("%s keywords │ %s nodes │ %d texts",
		humanize.Comma(int64(r.Keywords)), humanize.Comma(int64(r.Nodes)), r.Texts)
	if r.OK() {
		sb.WriteString(paint(colorGreen, "✓ consistent") + " │ " + summary + "\n")
		return sb.String()
	}
	sb.WriteString(paint(colorRed, fmt.Sprintf("✗ %d problems", len(r.Problems))) + " │ " + summary + "\n")
	for _, p := range r.Problems {
		sb.WriteString("  " + paint(colorYellow, p.Kind) + " " + fmt.Sprintf("%q: %s", p.Subject, p.Detail) + "\n")
	}
	return sb.String()
}
