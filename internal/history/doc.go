// Package history stores finished crawls in a SQLite database so that
// past runs can be listed and inspected with "spider history".
//
// A run is saved as one row in runs plus one row per visited page and per
// image download attempt. The database file lives in the XDG data
// directory unless another directory is given.
package history
