// Package report turns the crawl event stream into output.
//
//   - Console prints the progress lines ([start], [page], [img], [!], [done])
//     as events arrive.
//   - Collector accumulates events into a model.CrawlRecord.
//   - MarkdownWriter and JSONWriter render a finished CrawlRecord.
//
// Writers implement the Writer interface, so a record can be sent to
// several destinations with MultiWriter.
package report
