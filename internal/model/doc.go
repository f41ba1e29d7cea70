// Package model defines the data shared between the crawl engine and the
// components that consume its output: the event stream emitted while a
// crawl runs, the final summary, and the aggregated crawl record used by
// reports and the history database.
//
// The crawler package produces these values; report and history only read
// them. Nothing in this package performs I/O.
package model
