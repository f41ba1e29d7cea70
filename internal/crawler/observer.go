package crawler

import "github.com/nao1215/spider/internal/model"

// Observer receives the crawl event stream. The Spider serializes calls,
// so implementations do not need their own locking.
type Observer interface {
	Observe(ev model.Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ev model.Event)

// Observe implements Observer.
func (f ObserverFunc) Observe(ev model.Event) { f(ev) }

// MultiObserver forwards each event to every observer in order.
type MultiObserver []Observer

// Observe implements Observer.
func (m MultiObserver) Observe(ev model.Event) {
	for _, o := range m {
		if o != nil {
			o.Observe(ev)
		}
	}
}

type discardObserver struct{}

func (discardObserver) Observe(model.Event) {}
