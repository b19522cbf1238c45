package main

import (
	"fmt"
	"io"
	"os"

	"github.com/chazu/dexast/lift"
	"github.com/chazu/dexast/pipeline"
	"github.com/mattn/go-isatty"
)

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiRed    = "\033[31m"
)

// useColor reports whether f is a terminal and NO_COLOR is unset.
func useColor(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type painter bool

func (p painter) paint(code, s string) string {
	if !p {
		return s
	}
	return code + s + ansiReset
}

// printSummary writes run totals, per-family instruction counts and the
// most frequently dropped opcodes.
func printSummary(w io.Writer, s *pipeline.Summary, color bool) {
	p := painter(color)
	st := s.Stats

	fmt.Fprintf(w, "%s %d methods\n", p.paint(ansiBold, "dexast:"), st.Methods)
	fmt.Fprintf(w, "  %-12s %d\n", p.paint(ansiGreen, "converted"), st.Converted)
	fmt.Fprintf(w, "  %-12s %d\n", p.paint(ansiGreen, "cached"), st.Cached)
	fmt.Fprintf(w, "  %-12s %d\n", "absent", st.Absent)
	failed := "failed"
	if st.Failed > 0 {
		failed = p.paint(ansiRed, failed)
	}
	fmt.Fprintf(w, "  %-12s %d\n", failed, st.Failed)

	cov := s.Coverage
	ratio := fmt.Sprintf("%.1f%%", cov.Ratio()*100)
	if cov.DroppedCount() > 0 {
		ratio = p.paint(ansiYellow, ratio)
	}
	fmt.Fprintf(w, "%s %d of %d instructions lifted (%s)\n", p.paint(ansiBold, "coverage:"), cov.Emitted, cov.Total, ratio)

	for f := lift.FamilyUnrecognized; f <= lift.FamilyNewObject; f++ {
		if n := cov.Families[f]; n > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", f, n)
		}
	}

	if top := cov.TopDropped(5); len(top) > 0 {
		fmt.Fprintf(w, "%s\n", p.paint(ansiBold, "dropped:"))
		for _, op := range top {
			fmt.Fprintf(w, "  %-20s %d\n", op, cov.Dropped[op])
		}
	}
}
