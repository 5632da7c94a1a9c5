package table

import (
	"strconv"
	"strings"
)

// End is the subsequent-step marker that terminates the decision process.
const End = "Ende"

// Metadata describes a decision table.
type Metadata struct {
	EBDCode string `json:"ebd_code" yaml:"ebd_code"`
	Chapter string `json:"chapter" yaml:"chapter"`
	Section string `json:"section" yaml:"section"`
	EBDName string `json:"ebd_name" yaml:"ebd_name"`
	Role    string `json:"role" yaml:"role"`
	// Remark is set for tables without rows, e.g. "Es ist das EBD E_0527 zu nutzen."
	Remark string `json:"remark,omitempty" yaml:"remark,omitempty"`
}

// CheckResult is the answer of a check step and where the process continues.
// A nil Result marks a non-branching step.
type CheckResult struct {
	Result               *bool  `json:"result" yaml:"result"`
	SubsequentStepNumber string `json:"subsequent_step_number,omitempty" yaml:"subsequent_step_number,omitempty"`
}

// SubRow is one answer of a check step.
type SubRow struct {
	CheckResult   CheckResult `json:"check_result" yaml:"check_result"`
	ResultCode    string      `json:"result_code,omitempty" yaml:"result_code,omitempty"`
	Note          string      `json:"note,omitempty" yaml:"note,omitempty"`
	EBDReferences []string    `json:"ebd_references,omitempty" yaml:"ebd_references,omitempty"`
}

// Row is a single check step.
type Row struct {
	StepNumber  string   `json:"step_number" yaml:"step_number"`
	Description string   `json:"description" yaml:"description"`
	SubRows     []SubRow `json:"sub_rows" yaml:"sub_rows"`
	UseCases    []string `json:"use_cases,omitempty" yaml:"use_cases,omitempty"`
}

// HasSubsequentSteps reports whether any sub-row continues to another step.
func (r Row) HasSubsequentSteps() bool {
	for _, sr := range r.SubRows {
		if sr.CheckResult.SubsequentStepNumber != "" {
			return true
		}
	}
	return false
}

// IsTransition reports whether the row is a non-branching step.
func (r Row) IsTransition() bool {
	return len(r.SubRows) == 1 && r.SubRows[0].CheckResult.Result == nil
}

// MultiStepInstruction is a standing instruction that applies from
// FirstStepNumberAffected until the next instruction starts.
type MultiStepInstruction struct {
	InstructionText         string `json:"instruction_text" yaml:"instruction_text"`
	FirstStepNumberAffected string `json:"first_step_number_affected" yaml:"first_step_number_affected"`
}

// Table is a complete decision table.
type Table struct {
	Metadata              Metadata               `json:"metadata" yaml:"metadata"`
	Rows                  []Row                  `json:"rows" yaml:"rows"`
	MultiStepInstructions []MultiStepInstruction `json:"multi_step_instructions,omitempty" yaml:"multi_step_instructions,omitempty"`
}

// IsEmpty reports whether the table has no rows.
func (t *Table) IsEmpty() bool { return len(t.Rows) == 0 }

// Yes returns a positive check result continuing at next (may be empty).
func Yes(next string) CheckResult { return CheckResult{Result: boolPtr(true), SubsequentStepNumber: next} }

// No returns a negative check result continuing at next (may be empty).
func No(next string) CheckResult { return CheckResult{Result: boolPtr(false), SubsequentStepNumber: next} }

// Next returns a non-branching check result continuing at next.
func Next(next string) CheckResult { return CheckResult{SubsequentStepNumber: next} }

func boolPtr(b bool) *bool { return &b }

// StepOrdinal returns the integer part of a step number ("6*" → 6).
// The boolean is false unless step is all digits with an optional
// trailing "*".
func StepOrdinal(step string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSuffix(step, "*"))
	if err != nil {
		return 0, false
	}
	return n, true
}
