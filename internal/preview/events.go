package preview

import "sync"

// reloadEvents fans a "configuration changed" signal out to open
// /__reload streams. Each stream holds at most one undelivered event;
// several reloads before the browser reads collapse into one.
type reloadEvents struct {
	mu      sync.Mutex
	streams []chan struct{}
}

// open registers a new stream. The returned channel must be passed to
// close when the client goes away.
func (e *reloadEvents) open() chan struct{} {
	ch := make(chan struct{}, 1)
	e.mu.Lock()
	e.streams = append(e.streams, ch)
	e.mu.Unlock()
	return ch
}

func (e *reloadEvents) close(ch chan struct{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, s := range e.streams {
		if s == ch {
			e.streams = append(e.streams[:i], e.streams[i+1:]...)
			return
		}
	}
}

// publish marks every open stream as having a pending reload.
func (e *reloadEvents) publish() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ch := range e.streams {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (e *reloadEvents) len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.streams)
}
