package convert

import (
	"sort"

	"github.com/chazu/dexast/lift"
	"github.com/chazu/dexast/smali"
)

// Report counts how many instructions produced a statement and which
// opcodes were dropped.
type Report struct {
	Total    int
	Emitted  int
	Families map[lift.Family]int
	Dropped  map[string]int // opcode -> count
}

// Coverage dispatches instructions without a register table and tallies
// the outcome. It matches what BuildBody keeps, since the table never
// decides whether a node is produced.
func Coverage(instructions []smali.Instruction) Report {
	r := Report{
		Families: make(map[lift.Family]int),
		Dropped:  make(map[string]int),
	}
	for _, ins := range instructions {
		r.Total++
		r.Families[lift.ClassifyOpcode(ins.Opcode)]++
		if lift.Dispatch(ins, nil) != nil {
			r.Emitted++
		} else {
			r.Dropped[ins.Opcode]++
		}
	}
	return r
}

// DroppedCount returns the number of instructions that produced no node.
func (r Report) DroppedCount() int {
	return r.Total - r.Emitted
}

// Ratio returns the emitted fraction, or 1 for an empty report.
func (r Report) Ratio() float64 {
	if r.Total == 0 {
		return 1
	}
	return float64(r.Emitted) / float64(r.Total)
}

// Merge adds other's counts into r.
func (r *Report) Merge(other Report) {
	if r.Families == nil {
		r.Families = make(map[lift.Family]int)
	}
	if r.Dropped == nil {
		r.Dropped = make(map[string]int)
	}
	r.Total += other.Total
	r.Emitted += other.Emitted
	for f, n := range other.Families {
		r.Families[f] += n
	}
	for op, n := range other.Dropped {
		r.Dropped[op] += n
	}
}

// TopDropped returns up to n dropped opcodes, most frequent first and ties
// broken by name.
func (r Report) TopDropped(n int) []string {
	ops := make([]string, 0, len(r.Dropped))
	for op := range r.Dropped {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool {
		if r.Dropped[ops[i]] != r.Dropped[ops[j]] {
			return r.Dropped[ops[i]] > r.Dropped[ops[j]]
		}
		return ops[i] < ops[j]
	})
	if n >= 0 && len(ops) > n {
		ops = ops[:n]
	}
	return ops
}
