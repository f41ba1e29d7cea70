// Package main provides the entry point for the spider CLI.
//
// spider crawls a web site breadth-first from a seed URL, staying on the
// seed's host and port, and downloads every image it finds.
//
// Usage:
//
//	spider [-r] [-l depth] [-p dir] <url>
//	spider history
//	spider init
//
// See --help for all available options.
package main

// main is the entry point for spider.
func main() {
	Execute()
}
