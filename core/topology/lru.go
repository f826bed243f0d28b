package topology

import (
	"container/list"
	"slices"
	"sync"
)

type LRUOpts struct {
	// Size bounds the number of modules tracked. Defaults to 128.
	Size int
}

type entry struct {
	module string
	eps    []Endpoint
}

type lookupReq struct {
	module string
	resp   chan lookupResp
}

type lookupResp struct {
	eps []Endpoint
	ok  bool
}

type updateReq struct {
	module string
	eps    []Endpoint
}

// LRU is a bounded Cache for clients that address many modules. A single
// background goroutine owns the map, so no locking is needed; when the bound
// is exceeded the least recently used module's topology is dropped, which
// only costs that module an extra redirect on its next request.
type LRU struct {
	lookupCh chan lookupReq
	updateCh chan updateReq
	forgetCh chan string

	done sync.Once
	quit chan struct{}
}

func NewLRU(opts LRUOpts) *LRU {
	if opts.Size <= 0 {
		opts.Size = 128
	}

	l := &LRU{
		lookupCh: make(chan lookupReq),
		updateCh: make(chan updateReq),
		forgetCh: make(chan string),
		quit:     make(chan struct{}),
	}

	go l.run(opts.Size)

	return l
}

func (l *LRU) Lookup(module string) ([]Endpoint, bool) {
	resp := make(chan lookupResp, 1)
	select {
	case l.lookupCh <- lookupReq{module: module, resp: resp}:
		r := <-resp
		return r.eps, r.ok
	case <-l.quit:
		return nil, false
	}
}

func (l *LRU) Update(module string, eps []Endpoint) {
	select {
	case l.updateCh <- updateReq{module: module, eps: slices.Clone(eps)}:
	case <-l.quit:
	}
}

func (l *LRU) Forget(module string) {
	select {
	case l.forgetCh <- module:
	case <-l.quit:
	}
}

// Close stops the background goroutine. Operations after Close behave as if
// the cache were empty.
func (l *LRU) Close() {
	l.done.Do(func() { close(l.quit) })
}

func (l *LRU) run(size int) {
	ll := list.New()
	idx := make(map[string]*list.Element)

	remove := func(module string) {
		if ele, ok := idx[module]; ok {
			ll.Remove(ele)
			delete(idx, module)
		}
	}

	for {
		select {
		case <-l.quit:
			return

		case req := <-l.lookupCh:
			if ele, ok := idx[req.module]; ok {
				ll.MoveToFront(ele)
				req.resp <- lookupResp{eps: slices.Clone(ele.Value.(*entry).eps), ok: true}
			} else {
				req.resp <- lookupResp{}
			}

		case req := <-l.updateCh:
			if len(req.eps) == 0 {
				remove(req.module)
				continue
			}
			if ele, ok := idx[req.module]; ok {
				ll.MoveToFront(ele)
				ele.Value.(*entry).eps = req.eps
				continue
			}
			idx[req.module] = ll.PushFront(&entry{module: req.module, eps: req.eps})
			if ll.Len() > size {
				if last := ll.Back(); last != nil {
					ll.Remove(last)
					delete(idx, last.Value.(*entry).module)
				}
			}

		case module := <-l.forgetCh:
			remove(module)
		}
	}
}

var _ Cache = (*LRU)(nil)
