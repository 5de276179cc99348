// Package output renders command results for terminals and pipelines.
//
// Every command accepts an --output flag parsed by ParseMode: "table"
// renders pterm boxes and tables for humans, while "json" and "yaml"
// emit machine-readable documents with stable field names. Rendering
// writes to an io.Writer so tests can capture it.
//
// NO_COLOR disables ANSI styling globally via InitStyles.
package output
