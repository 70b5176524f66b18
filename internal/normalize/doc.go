// Package normalize rewrites dataset column headers into canonical
// snake_case identifiers.
//
// Published CMS tables carry headers like "Patient Survey  Score!" or
// "ZIP Code"; downstream tooling wants stable, punctuation-free column
// names. Column maps any header to the alphabet [a-z0-9_]:
//
//	normalize.Column("Patient Survey  Score!") // "patient_survey_score"
//	normalize.Column("  ZIP Code ")            // "zip_code"
//
// The transform is pure and total: it never fails, and equal inputs
// always produce equal outputs.
package normalize
