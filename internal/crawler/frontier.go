package crawler

// entry is a page waiting to be processed.
type entry struct {
	url   string
	depth int
}

// frontier is the FIFO queue of pages to visit. It is owned by a single
// goroutine and is not safe for concurrent use.
type frontier struct {
	items []entry
	head  int
}

func (f *frontier) push(url string, depth int) {
	f.items = append(f.items, entry{url: url, depth: depth})
}

func (f *frontier) pop() (entry, bool) {
	if f.head >= len(f.items) {
		return entry{}, false
	}
	e := f.items[f.head]
	f.items[f.head] = entry{}
	f.head++

	// Reclaim the consumed prefix once it dominates the slice.
	if f.head > 64 && f.head*2 >= len(f.items) {
		f.items = append(f.items[:0:0], f.items[f.head:]...)
		f.head = 0
	}
	return e, true
}

func (f *frontier) len() int {
	return len(f.items) - f.head
}
