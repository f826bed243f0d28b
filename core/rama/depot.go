package rama

import "context"

// AckLevel is the durability/processing acknowledgment a depot append waits
// for before the cluster answers.
type AckLevel string

const (
	// AckLevelAck waits for the record to be fully processed by streaming
	// topologies. The server default when no level is sent.
	AckLevelAck AckLevel = "ack"
	// AckLevelAppendAck waits only for the record to land on the depot
	// partition.
	AckLevelAppendAck AckLevel = "appendAck"
	// AckLevelNone does not wait at all.
	AckLevelNone AckLevel = "none"
)

// AckReturns maps topology names to their per-topology ack return values.
// Empty for AckLevelAppendAck and AckLevelNone.
type AckReturns map[string]any

// appendBody is the wire shape of a depot append. ackLevel is omitted when
// unset so the server default applies.
type appendBody struct {
	Data     any      `json:"data"`
	AckLevel AckLevel `json:"ackLevel,omitempty"`
}

type appendOptions struct {
	ackLevel AckLevel
}

type AppendOption func(*appendOptions)

// WithAckLevel sets the acknowledgment level for an append. When not given,
// the server default (AckLevelAck) applies.
func WithAckLevel(level AckLevel) AppendOption {
	return func(o *appendOptions) {
		o.ackLevel = level
	}
}

// Depot is an append-only ingestion endpoint within a module.
type Depot struct {
	m    *Module
	name string
}

// Name returns the depot name.
func (d *Depot) Name() string { return d.name }

// Append adds data to the depot, routed to whichever supervisor serves the
// module, and returns the per-topology ack values (empty unless the
// effective ack level is AckLevelAck).
func (d *Depot) Append(ctx context.Context, data any, opts ...AppendOption) (AckReturns, error) {
	var o appendOptions
	for _, opt := range opts {
		opt(&o)
	}

	body := appendBody{Data: data, AckLevel: o.ackLevel}
	out := AckReturns{}
	if err := d.m.c.execute(ctx, d.m.name, "depot/"+d.name+"/append", body, &out); err != nil {
		return nil, err
	}
	return out, nil
}
