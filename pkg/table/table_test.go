package table

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	errs "github.com/matzehuels/ebdgraph/pkg/errors"
)

func validTable() *Table {
	return &Table{
		Metadata: Metadata{EBDCode: "E_0003", Chapter: "7.39", Section: "7.39.1", Role: "ÜNB"},
		Rows: []Row{
			{
				StepNumber:  "1",
				Description: "Erfolgt der Eingang der Bestellung fristgerecht?",
				SubRows: []SubRow{
					{CheckResult: No(""), ResultCode: "A01", Note: "Fristüberschreitung"},
					{CheckResult: Yes("2")},
				},
			},
			{
				StepNumber:  "2",
				Description: "Erfolgt die Bestellung zum Monatsersten 00:00 Uhr?",
				SubRows: []SubRow{
					{CheckResult: No(""), ResultCode: "A02", Note: "Gewählter Zeitpunkt nicht zulässig"},
					{CheckResult: Yes(End)},
				},
			},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Table)
		wantErr bool
	}{
		{"valid", func(*Table) {}, false},
		{"empty table with remark", func(tb *Table) {
			tb.Rows = nil
			tb.Metadata.Remark = "Es ist das EBD E_0527 zu nutzen."
		}, false},
		{"asterisk code", func(tb *Table) { tb.Rows[0].SubRows[0].ResultCode = "A**" }, false},
		{"two letter code", func(tb *Table) { tb.Rows[0].SubRows[0].ResultCode = "AC7" }, false},
		{"starred step", func(tb *Table) { tb.Rows[1].StepNumber = "2*"; tb.Rows[0].SubRows[1].CheckResult = Yes("2*") }, false},
		{"distinct instruction starts", func(tb *Table) {
			tb.MultiStepInstructions = []MultiStepInstruction{
				{InstructionText: "x", FirstStepNumberAffected: "1"},
				{InstructionText: "y", FirstStepNumberAffected: "2"},
			}
		}, false},
		{"transition row", func(tb *Table) {
			tb.Rows[0].SubRows = []SubRow{{CheckResult: Next("2"), Note: "Aufnahme von Treffern"}}
		}, false},

		{"bad ebd code", func(tb *Table) { tb.Metadata.EBDCode = "E0003" }, true},
		{"bad step number", func(tb *Table) { tb.Rows[0].StepNumber = "1a" }, true},
		{"bad subsequent step", func(tb *Table) { tb.Rows[0].SubRows[1].CheckResult = Yes("zwei") }, true},
		{"bad result code", func(tb *Table) { tb.Rows[0].SubRows[0].ResultCode = "X-1" }, true},
		{"single sub-row with result", func(tb *Table) {
			tb.Rows[0].SubRows = []SubRow{{CheckResult: Yes("2")}}
		}, true},
		{"branching null result", func(tb *Table) { tb.Rows[0].SubRows[0].CheckResult = Next("2") }, true},
		{"two yes results", func(tb *Table) { tb.Rows[0].SubRows[0].CheckResult = Yes("") }, true},
		{"three sub-rows", func(tb *Table) {
			tb.Rows[0].SubRows = append(tb.Rows[0].SubRows, SubRow{CheckResult: Yes("2")})
		}, true},
		{"no sub-rows", func(tb *Table) { tb.Rows[0].SubRows = nil }, true},
		{"transition without next", func(tb *Table) {
			tb.Rows[0].SubRows = []SubRow{{CheckResult: Next(""), Note: "x"}}
		}, true},
		{"dangling sub-row", func(tb *Table) { tb.Rows[0].SubRows[0] = SubRow{CheckResult: No("")} }, true},
		{"bad reference", func(tb *Table) { tb.Rows[0].SubRows[0].EBDReferences = []string{"E_12"} }, true},
		{"bad instruction start", func(tb *Table) {
			tb.MultiStepInstructions = []MultiStepInstruction{{InstructionText: "x", FirstStepNumberAffected: "ab"}}
		}, true},
		{"duplicate instruction start", func(tb *Table) {
			tb.MultiStepInstructions = []MultiStepInstruction{
				{InstructionText: "x", FirstStepNumberAffected: "1"},
				{InstructionText: "y", FirstStepNumberAffected: "1"},
			}
		}, true},
		{"instruction starts sharing an ordinal", func(tb *Table) {
			tb.MultiStepInstructions = []MultiStepInstruction{
				{InstructionText: "x", FirstStepNumberAffected: "2"},
				{InstructionText: "y", FirstStepNumberAffected: "2*"},
			}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := validTable()
			tt.mutate(tb)
			err := Validate(tb)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errs.Is(err, errs.ErrCodeInvalidInput) {
				t.Errorf("Validate() code = %v, want INVALID_INPUT", errs.GetCode(err))
			}
		})
	}
}

func TestValidateNil(t *testing.T) {
	if err := Validate(nil); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("Validate(nil) = %v, want INVALID_INPUT", err)
	}
}

func TestValidateCodePattern(t *testing.T) {
	tb := validTable()
	tb.Rows[0].SubRows[0].ResultCode = "AC7"

	if err := Validate(tb, WithCodePattern(CodePatterns["2024"])); err != nil {
		t.Errorf("2024 pattern should accept AC7: %v", err)
	}
	if err := Validate(tb, WithCodePattern(CodePatterns["2023"])); err == nil {
		t.Error("2023 pattern should reject AC7")
	}

	tb.Rows[0].SubRows[0].ResultCode = "A**"
	if err := Validate(tb, WithCodePattern(CodePatterns["2023"])); err != nil {
		t.Errorf("2023 pattern should accept A**: %v", err)
	}
}

func TestLookupCodePattern(t *testing.T) {
	p, err := LookupCodePattern("")
	if err != nil {
		t.Fatalf("LookupCodePattern(\"\") error: %v", err)
	}
	if p.Name != DefaultCodePattern {
		t.Errorf("Name = %q, want %q", p.Name, DefaultCodePattern)
	}
	if _, err := LookupCodePattern("1999"); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("unknown pattern: err = %v, want %s", err, errs.ErrCodeInvalidInput)
	}
}

func TestStepOrdinal(t *testing.T) {
	tests := []struct {
		step string
		want int
		ok   bool
	}{
		{"1", 1, true},
		{"105", 105, true},
		{"6*", 6, true},
		{"Ende", 0, false},
		{"", 0, false},
		{"6a", 0, false},
		{"*6", 0, false},
	}
	for _, tt := range tests {
		got, ok := StepOrdinal(tt.step)
		if got != tt.want || ok != tt.ok {
			t.Errorf("StepOrdinal(%q) = %d, %v; want %d, %v", tt.step, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRowHelpers(t *testing.T) {
	tb := validTable()
	if !tb.Rows[0].HasSubsequentSteps() {
		t.Error("row 1 continues at step 2")
	}
	if tb.Rows[0].IsTransition() {
		t.Error("row 1 is a decision")
	}
	r := Row{StepNumber: "105", SubRows: []SubRow{{CheckResult: Next("110")}}}
	if !r.IsTransition() {
		t.Error("single non-branching sub-row is a transition")
	}
	r = Row{StepNumber: "2", SubRows: []SubRow{{CheckResult: No(""), ResultCode: "A02"}}}
	if r.HasSubsequentSteps() {
		t.Error("row without next step")
	}
}

func TestReadFile(t *testing.T) {
	for _, name := range []string{"e_0003.json", "e_0003.yaml"} {
		t.Run(name, func(t *testing.T) {
			tb, err := ReadFile(filepath.Join("testdata", name))
			if err != nil {
				t.Fatalf("ReadFile error: %v", err)
			}
			if tb.Metadata.EBDCode != "E_0003" {
				t.Errorf("EBDCode = %q", tb.Metadata.EBDCode)
			}
			if tb.Metadata.Role != "ÜNB" {
				t.Errorf("Role = %q", tb.Metadata.Role)
			}
			if len(tb.Rows) != 2 {
				t.Fatalf("rows = %d, want 2", len(tb.Rows))
			}
			sr := tb.Rows[1].SubRows[1]
			if sr.CheckResult.Result == nil || !*sr.CheckResult.Result {
				t.Error("row 2 sub-row 2 should be a yes result")
			}
			if sr.CheckResult.SubsequentStepNumber != End {
				t.Errorf("subsequent = %q, want %q", sr.CheckResult.SubsequentStepNumber, End)
			}
			if tb.Rows[0].SubRows[0].CheckResult.SubsequentStepNumber != "" {
				t.Error("null subsequent step should decode as empty")
			}
		})
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	if !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("ReadFile(missing) = %v, want FILE_NOT_FOUND", err)
	}
}

func TestReadFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"metadata": {"ebd_code": "nope"}, "rows": []}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(path); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("ReadFile(bad) = %v, want INVALID_INPUT", err)
	}
}

func TestReadJSONSyntaxError(t *testing.T) {
	if _, err := ReadJSON(strings.NewReader("{")); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("ReadJSON = %v, want INVALID_INPUT", err)
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(validTable(), &buf); err != nil {
		t.Fatalf("WriteJSON error: %v", err)
	}
	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON error: %v", err)
	}
	if err := Validate(got); err != nil {
		t.Errorf("round-tripped table is invalid: %v", err)
	}
	if *got.Rows[0].SubRows[0].CheckResult.Result {
		t.Error("result false lost in round trip")
	}
}
