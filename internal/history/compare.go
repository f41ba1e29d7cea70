package history

import (
	"sort"

	"github.com/nao1215/spider/internal/model"
)

// Comparison describes how a crawl differs from an earlier one.
type Comparison struct {
	Previous *model.CrawlRecord `json:"-"`
	Current  *model.CrawlRecord `json:"-"`

	// NewPages were visited by the current run only.
	NewPages []string `json:"newPages"`

	// RemovedPages were visited by the previous run only.
	RemovedPages []string `json:"removedPages"`

	// NewImages were downloaded by the current run only.
	NewImages []string `json:"newImages"`

	// RemovedImages were downloaded by the previous run only.
	RemovedImages []string `json:"removedImages"`

	// ChangedImages were downloaded by both runs with different content.
	ChangedImages []string `json:"changedImages"`

	// UnchangedImages counts images downloaded by both runs with the same
	// digest.
	UnchangedImages int `json:"unchangedImages"`

	// NewFailures failed in the current run but not in the previous one.
	NewFailures []string `json:"newFailures"`

	// ResolvedFailures failed in the previous run but not in the current one.
	ResolvedFailures []string `json:"resolvedFailures"`
}

// Compare compares two runs by page and image URL. Image content is
// compared by digest.
func Compare(previous, current *model.CrawlRecord) *Comparison {
	c := &Comparison{
		Previous:         previous,
		Current:          current,
		NewPages:         make([]string, 0),
		RemovedPages:     make([]string, 0),
		NewImages:        make([]string, 0),
		RemovedImages:    make([]string, 0),
		ChangedImages:    make([]string, 0),
		NewFailures:      make([]string, 0),
		ResolvedFailures: make([]string, 0),
	}

	prevPages := pageSet(previous)
	curPages := pageSet(current)
	c.NewPages = difference(curPages, prevPages)
	c.RemovedPages = difference(prevPages, curPages)

	prevImages := imageDigests(previous)
	curImages := imageDigests(current)
	c.NewImages = difference(curImages, prevImages)
	c.RemovedImages = difference(prevImages, curImages)
	for u, digest := range curImages {
		old, ok := prevImages[u]
		if !ok {
			continue
		}
		if old == digest {
			c.UnchangedImages++
		} else {
			c.ChangedImages = append(c.ChangedImages, u)
		}
	}
	sort.Strings(c.ChangedImages)

	prevFailures := failureSet(previous)
	curFailures := failureSet(current)
	c.NewFailures = difference(curFailures, prevFailures)
	c.ResolvedFailures = difference(prevFailures, curFailures)

	return c
}

// HasChanges reports whether the runs differ in any tracked way.
func (c *Comparison) HasChanges() bool {
	return len(c.NewPages)+len(c.RemovedPages)+len(c.NewImages)+len(c.RemovedImages)+
		len(c.ChangedImages)+len(c.NewFailures)+len(c.ResolvedFailures) > 0
}

func pageSet(r *model.CrawlRecord) map[string]string {
	set := make(map[string]string, len(r.Pages))
	for _, p := range r.Pages {
		set[p.URL] = ""
	}
	return set
}

func imageDigests(r *model.CrawlRecord) map[string]string {
	set := make(map[string]string, len(r.Images))
	for _, img := range r.Images {
		if !img.Failed {
			set[img.URL] = img.Digest
		}
	}
	return set
}

func failureSet(r *model.CrawlRecord) map[string]string {
	set := make(map[string]string)
	for _, p := range r.FailedPages() {
		set[p.URL] = ""
	}
	for _, img := range r.FailedImages() {
		set[img.URL] = ""
	}
	return set
}

// difference returns the sorted keys of a that are not in b.
func difference(a, b map[string]string) []string {
	out := make([]string, 0)
	for k := range a {
		if _, ok := b[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
