// Package domain models community-submitted memory records as they arrive
// from the shared spreadsheet and as the rest of the service consumes them.
//
// # Data Source
//
// Memories are collected through a web form that appends one row per
// submission to a spreadsheet. The sheet is exposed three ways: the
// spreadsheet values API, a raw JSON snapshot mirrored to a public
// repository, and a local copy of that snapshot bundled with the service.
// All three carry the same shape: an array of rows, each row an array of
// cells, the first row naming the columns.
//
// # Column Labels
//
// The form has been published in English and Japanese, so column headers
// arrive in either language and with inconsistent width and case:
//
//	"Coordinates", "座標", "ＣＯＯＲＤＩＮＡＴＥＳ"  →  coordinates
//	"Avatar Name", "アバター"                      →  avatar
//
// Labels are NFKC-normalized, case-folded and stripped of spaces, underscores
// and hyphens before they are looked up in [headerAliases]. Unknown columns
// are ignored. Cells are always addressed by header name, never by position.
//
// # Coordinates
//
// The coordinates cell holds "lat,lon" as typed by the submitter, often
// pasted from a map with surrounding brackets:
//
//	"35.6, 139.7"  "[35.6, 139.7]"  "(35.6,139.7)"  "［35.6，139.7］"
//
// [NormalizeCoordinates] folds full-width forms, strips the brackets and
// whitespace. [ParseCoordinates] then requires exactly two finite numbers.
// Map libraries take (lon, lat); [LatLon.LngLat] swaps the order.
//
// # Admission
//
// A row becomes a [Record] only when its coordinates parse and its avatar
// name is non-empty. Failing rows are reported as [Rejection] values and
// never abort the batch.
//
// # ID Assignment
//
// Record IDs are the 1-based ordinal of the data row (the header is row 0).
// Dropped rows keep their ordinal, so admitted IDs may have gaps. IDs are
// only stable for one load: a reload numbers rows again from 1.
package domain
