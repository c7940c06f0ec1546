// Package truth loads ground-truth datasets and reconciles them against
// simulation index sets.
//
// The result of every call is a Bundle capturing loaded, missing and extra
// indices plus the diagnostics collected along the way. Two conditions have
// configurable severity (warn, error, ignore): a truth file absent from
// storage, and a discrepancy between an explicitly requested truth index set
// and the simulation keys. Everything else propagates as a hard error.
//
// This package is intentionally limited to loading and matching; model
// evaluation and scoring live elsewhere.
package truth
