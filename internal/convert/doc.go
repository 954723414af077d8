// Package convert turns record-oriented XML into a multi-sheet xlsx
// workbook, detecting time-series data and reshaping it from long to
// wide format when it qualifies.
//
// The pipeline is a fixed sequence of pure steps:
//
//  1. ExtractRecords locates the repeating record element by local name,
//     ignoring namespaces, and flattens each match into a Record.
//  2. InferSchema computes the union schema, classifies every field as
//     numeric or textual, and tags the category, period and value roles
//     by configured name patterns.
//  3. PlanPivot decides whether the set pivots, or why it does not.
//  4. BuildPivot reshapes the records into a category x period table,
//     applying the configured collision policy to duplicate cells.
//  5. BuildWorkbook assembles the Data, Original_Data and Metadata
//     sheets atomically with excelize.
//
// Converter.Convert runs the whole sequence and wraps the outcome in a
// Result for the transport layer. Conversions share nothing but the
// immutable Options, so one Converter serves concurrent requests.
package convert
