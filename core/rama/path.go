package rama

import "slices"

// Path is an ordered sequence of navigators describing a PState query.
// Build one fluently and hand it to [Select] or [SelectOne]; execution
// consumes the path and it must not be reused afterwards.
type Path struct {
	steps    []any
	consumed bool
}

// NewPath returns an empty path (selects the whole PState).
func NewPath() *Path {
	return &Path{steps: []any{}}
}

// Nav appends an implicit navigator: the value travels as-is. Strings
// navigate by key, functions ([Function] values) filter by predicate,
// numbers and booleans navigate by themselves.
func (p *Path) Nav(v any) *Path {
	p.steps = append(p.steps, v)
	return p
}

// Key appends a string key navigator.
func (p *Path) Key(k string) *Path {
	return p.Nav(k)
}

// FilterPredFn appends a predicate filter referencing a named function on
// the cluster, e.g. FilterPredFn("Ops.IS_EVEN").
func (p *Path) FilterPredFn(name string) *Path {
	return p.Nav(Function(name))
}

// op appends an explicit navigator of the shape ["opName", args...].
func (p *Path) op(name string, args ...any) *Path {
	step := make([]any, 0, len(args)+1)
	step = append(step, name)
	step = append(step, args...)
	p.steps = append(p.steps, step)
	return p
}

// All appends the "all" navigator: navigate to every element.
func (p *Path) All() *Path {
	return p.op("all")
}

// Must appends the "must" navigator: navigate to the given keys, failing
// the match when any is absent.
func (p *Path) Must(keys ...any) *Path {
	return p.op("must", keys...)
}

// MapVals appends the "mapVals" navigator: navigate to every map value.
func (p *Path) MapVals() *Path {
	return p.op("mapVals")
}

// MapKeys appends the "mapKeys" navigator: navigate to every map key.
func (p *Path) MapKeys() *Path {
	return p.op("mapKeys")
}

// FilterSelected appends the "filterSelected" navigator: keep the current
// value only when sub selects something from it. The sub-path's steps are
// spliced into the navigator as individual arguments, one level deep:
// FilterSelected(NewPath().Key("a").All()) encodes as
// ["filterSelected", "a", ["all"]], not ["filterSelected", ["a", ["all"]]].
func (p *Path) FilterSelected(sub *Path) *Path {
	return p.op("filterSelected", sub.Steps()...)
}

// Subselect appends the "subselect" navigator: navigate to the sequence of
// everything sub selects. Sub-path steps are spliced like [Path.FilterSelected].
func (p *Path) Subselect(sub *Path) *Path {
	return p.op("subselect", sub.Steps()...)
}

// View appends the "view" navigator: transform the current value with a
// function reference and optional extra arguments.
func (p *Path) View(fn EncodedValue, args ...any) *Path {
	viewArgs := make([]any, 0, len(args)+1)
	viewArgs = append(viewArgs, fn)
	viewArgs = append(viewArgs, args...)
	return p.op("view", viewArgs...)
}

// TermVal appends the "termVal" navigator: replace the current value.
func (p *Path) TermVal(v any) *Path {
	return p.op("termVal", v)
}

// SortedMapRange appends the "sortedMapRange" navigator: navigate to the
// submap of keys in [from, to).
func (p *Path) SortedMapRange(from, to any) *Path {
	return p.op("sortedMapRange", from, to)
}

// MultiPath appends the "multiPath" navigator: navigate to the results of
// each sub-path in turn. Unlike [Path.Subselect], every sub-path stays one
// array argument.
func (p *Path) MultiPath(subs ...*Path) *Path {
	args := make([]any, 0, len(subs))
	for _, s := range subs {
		args = append(args, s.Steps())
	}
	return p.op("multiPath", args...)
}

// Steps returns a copy of the accumulated navigators.
func (p *Path) Steps() []any {
	if p == nil {
		return []any{}
	}
	return slices.Clone(p.steps)
}

// consume marks the path as executed, claiming its steps. Sub-paths passed
// to FilterSelected and friends are never consumed, only terminal execution
// consumes.
func (p *Path) consume() ([]any, error) {
	if p == nil {
		return []any{}, nil
	}
	if p.consumed {
		return nil, ErrQueryConsumed
	}
	p.consumed = true
	if p.steps == nil {
		return []any{}, nil
	}
	return p.steps, nil
}
