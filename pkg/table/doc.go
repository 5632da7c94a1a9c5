// Package table models the decision tables (Entscheidungsbaumdiagramme, EBDs)
// that ebdgraph converts into graphs.
//
// A [Table] is a list of [Row] values. Each row is a numbered check step with a
// question and one or two [SubRow] answers. A sub-row names the outcome code
// and note that apply when the check yields its result, and/or the step to
// continue with. The terminal marker [End] ("Ende") ends the process.
//
// Tables usually arrive as JSON produced by an upstream scraper. [ReadJSON],
// [ReadYAML] and [ReadFile] decode them; [Validate] enforces the input
// contract the graph builder relies on:
//
//   - every row has one or two sub-rows
//   - a one-sub-row row is non-branching (nil result) and names a next step
//   - a two-sub-row row has exactly one true and one false result
//   - step numbers, ebd codes and outcome codes match their patterns
//
// # Outcome code patterns
//
// The set of admissible outcome codes changed between format versions of the
// source documents (the asterisk code A** and two-letter prefixes such as AC7
// appeared over time). [CodePatterns] registers the known versions; pass one
// to [Validate] with [WithCodePattern].
package table
