package convert

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/chazu/dexast/ast"
	"github.com/chazu/dexast/descriptor"
	"github.com/chazu/dexast/lift"
	"github.com/chazu/dexast/regs"
	"github.com/chazu/dexast/smali"
)

func counterMethods(t *testing.T) []smali.Method {
	t.Helper()
	methods, err := smali.LoadFile(filepath.Join("..", "smali", "testdata", "Counter.smali"))
	if err != nil {
		t.Fatalf("load listing: %v", err)
	}
	return methods
}

func findMethod(t *testing.T, methods []smali.Method, name string) *smali.Method {
	t.Helper()
	for i := range methods {
		if methods[i].Name == name {
			return &methods[i]
		}
	}
	t.Fatalf("method %s not found", name)
	return nil
}

func TestConvertMethodGolden(t *testing.T) {
	m := Convert(findMethod(t, counterMethods(t), "add"))
	if m == nil {
		t.Fatal("Convert returned nil")
	}
	got := ast.RenderMethod(m)

	goldenPath := filepath.Join("testdata", "counter_add.golden")
	expected, err := os.ReadFile(goldenPath)
	if err != nil {
		if err := os.WriteFile(goldenPath, []byte(got+"\n"), 0o644); err != nil {
			t.Fatalf("write golden file: %v", err)
		}
		t.Logf("created golden file: %s", goldenPath)
		return
	}
	if got != strings.TrimSpace(string(expected)) {
		t.Errorf("rendering mismatch:\n  got:  %s\n  want: %s", got, strings.TrimSpace(string(expected)))
	}
}

func TestConvertMethodNoBody(t *testing.T) {
	methods := counterMethods(t)
	for _, name := range []string{"run", "nativeHash"} {
		if got := Convert(findMethod(t, methods, name)); got != nil {
			t.Errorf("Convert(%s) = %v, want nil", name, got)
		}
	}
	if got := ConvertMethod(nil, false); got != nil {
		t.Error("ConvertMethod(nil) should be nil")
	}
	if got := Convert(nil); got != nil {
		t.Error("Convert(nil) should be nil")
	}
}

func TestConvertMethodStatic(t *testing.T) {
	m := &smali.Method{
		Class:       "Lcom/Foo;",
		Name:        "sum",
		Descriptor:  "(JI)J",
		AccessFlags: "public static",
		Instructions: []smali.Instruction{
			{Opcode: "int-to-long", Operands: "v0, p2"},
			{Opcode: "add-long/2addr", Operands: "v0, p0"},
			{Opcode: "return-wide", Operands: "v0"},
		},
	}

	got := Convert(m)
	if got == nil {
		t.Fatal("Convert returned nil")
	}

	wantParams := []ast.Param{
		{Slot: "p0", Type: descriptor.Primitive("long")},
		{Slot: "p2", Type: descriptor.Primitive("int")},
	}
	if !reflect.DeepEqual(got.Params, wantParams) {
		t.Errorf("params = %+v, want %+v", got.Params, wantParams)
	}
	if got.Return != descriptor.Primitive("long") {
		t.Errorf("return = %v, want long", got.Return)
	}
	if !reflect.DeepEqual(got.Flags, []string{"public", "static"}) {
		t.Errorf("flags = %q", got.Flags)
	}
	if got.Triple != (ast.Triple{Class: "com.Foo", Name: "sum", Descriptor: "(JI)J"}) {
		t.Errorf("triple = %+v", got.Triple)
	}
	if got.StatementCount() != 3 {
		t.Errorf("statements = %d, want 3", got.StatementCount())
	}
	if got.Comments == nil || len(got.Comments) != 0 {
		t.Errorf("comments = %#v, want empty list", got.Comments)
	}

	// Forcing instance binding shifts every slot by one.
	inst := ConvertMethod(m, false)
	if inst.Params[0].Type != descriptor.This || inst.Params[1].Slot != "p1" || inst.Params[2].Slot != "p3" {
		t.Errorf("instance params = %+v", inst.Params)
	}
}

func TestBuildBodyDropsUnrecognized(t *testing.T) {
	instructions := []smali.Instruction{
		{Opcode: "const/4", Operands: "v0, 0x0"},
		{Opcode: "add-int/2addr", Operands: "v0, v1"},
		{Opcode: "nop"},
		{Opcode: "move-result", Operands: "v2"},
		{Opcode: "if-eqz", Operands: "v0, :L1"},
		{Opcode: "goto", Operands: ":L2"},
		{Opcode: "return-void"},
	}

	body := BuildBody(instructions, nil)

	unrecognized := 0
	for _, ins := range instructions {
		if !lift.Recognized(ins.Opcode) {
			unrecognized++
		}
	}
	if unrecognized != 4 {
		t.Fatalf("unrecognized = %d, want 4", unrecognized)
	}
	if got, want := len(body.Statements), len(instructions)-unrecognized; got != want {
		t.Errorf("statements = %d, want %d", got, want)
	}

	want := []byte{ast.TagAssignment, ast.TagIf, ast.TagReturn}
	for i, s := range body.Statements {
		if s.Tag() != want[i] {
			t.Errorf("statement %d tag = %s, want %s", i, ast.TagName(s.Tag()), ast.TagName(want[i]))
		}
	}
}

func TestBuildBodyEmpty(t *testing.T) {
	body := BuildBody(nil, nil)
	if body == nil || body.Statements == nil || len(body.Statements) != 0 {
		t.Errorf("BuildBody(nil) = %#v, want empty block", body)
	}
}

func TestBuildBodyOwnsTable(t *testing.T) {
	b := regs.Bind(nil, false)
	instructions := []smali.Instruction{
		{Opcode: "new-instance", Operands: "v0, Lcom/Foo;"},
		{Opcode: "long-to-int", Operands: "v1, v2"},
	}

	BuildBody(instructions, b.Params)
	BuildBody(instructions, b.Params)

	if len(b.Params) != 1 || b.Params[0].Type != descriptor.This {
		t.Errorf("binding mutated: %+v", b.Params)
	}
}

func TestConvertIdempotent(t *testing.T) {
	for _, m := range counterMethods(t) {
		a := Convert(&m)
		b := Convert(&m)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("%s: conversions differ", m.Name)
		}
		if a == nil {
			continue
		}
		if ast.HashMethod(a) != ast.HashMethod(b) {
			t.Errorf("%s: hashes differ", m.Name)
		}
		if !reflect.DeepEqual(ast.Tokens(a), ast.Tokens(b)) {
			t.Errorf("%s: token streams differ", m.Name)
		}
	}
}

func TestCoverage(t *testing.T) {
	m := findMethod(t, counterMethods(t), "add")
	r := Coverage(m.Instructions)

	if r.Total != 6 || r.Emitted != 5 {
		t.Errorf("total/emitted = %d/%d, want 6/5", r.Total, r.Emitted)
	}
	if r.DroppedCount() != 1 || r.Dropped["const-string"] != 1 {
		t.Errorf("dropped = %v", r.Dropped)
	}
	if r.Families[lift.FamilyFieldAccess] != 2 {
		t.Errorf("field accesses = %d, want 2", r.Families[lift.FamilyFieldAccess])
	}
	if got := Convert(m).StatementCount(); got != r.Emitted {
		t.Errorf("StatementCount() = %d, Coverage emitted %d", got, r.Emitted)
	}

	var total Report
	total.Merge(r)
	total.Merge(Coverage([]smali.Instruction{{Opcode: "nop"}, {Opcode: "nop"}}))
	if total.Total != 8 || total.DroppedCount() != 3 {
		t.Errorf("merged total/dropped = %d/%d, want 8/3", total.Total, total.DroppedCount())
	}
	if got := total.TopDropped(1); !reflect.DeepEqual(got, []string{"nop"}) {
		t.Errorf("TopDropped(1) = %q, want [nop]", got)
	}
	if Coverage(nil).Ratio() != 1 {
		t.Error("empty coverage ratio should be 1")
	}
}
