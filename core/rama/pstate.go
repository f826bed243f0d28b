package rama

import "context"

// PState is a queryable state store within a module, navigated with [Path].
type PState struct {
	m    *Module
	name string
}

// Name returns the pstate name.
func (p *PState) Name() string { return p.name }

// Select executes path against the pstate's select endpoint and decodes the
// matched results. The path is consumed; executing it again returns
// ErrQueryConsumed. A nil path selects the whole pstate.
func Select[R any](ctx context.Context, p *PState, path *Path) ([]R, error) {
	steps, err := path.consume()
	if err != nil {
		return nil, err
	}
	var out []R
	if err := p.m.c.execute(ctx, p.m.name, "pstate/"+p.name+"/select", steps, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SelectOne executes path against the pstate's selectOne endpoint and
// decodes the single result. The cluster signals the error when zero or
// multiple values match; the client surfaces that as a normal status or
// decode failure rather than counting results itself. The path is consumed.
func SelectOne[R any](ctx context.Context, p *PState, path *Path) (R, error) {
	var out R
	steps, err := path.consume()
	if err != nil {
		return out, err
	}
	if err := p.m.c.execute(ctx, p.m.name, "pstate/"+p.name+"/selectOne", steps, &out); err != nil {
		return out, err
	}
	return out, nil
}
