// Package registry implements the building-record core: it flattens the
// terminal groups of a parsed feature-collection tree into typed records,
// deduplicates them on the permanent building identifier (vtj_prt), and
// builds a street/house-number index over the result. The Database type
// composes the pieces into the query surface the CLI and the HTTP server
// read from.
package registry
