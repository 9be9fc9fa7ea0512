package command

import "sync/atomic"

var nextClientID uint64

// Client is the per-connection state visible to command handlers (§3
// "Connection State"): which database is selected, plus enough identity to
// act as a pubsub.Subscriber. The connection layer (internal/server) embeds
// this alongside its socket and buffers.
type Client struct {
	id         uint64
	DatabaseID int

	deliver func(frame []byte)
}

// NewClient allocates a Client with a fresh, process-unique ID and the
// default database selected (§4.H: "starts with database 0 selected").
func NewClient(deliver func(frame []byte)) *Client {
	return &Client{
		id:      atomic.AddUint64(&nextClientID, 1),
		deliver: deliver,
	}
}

// ID satisfies pubsub.Subscriber.
func (c *Client) ID() uint64 { return c.id }

// Deliver satisfies pubsub.Subscriber by forwarding to the connection's
// write path.
func (c *Client) Deliver(frame []byte) {
	if c.deliver != nil {
		c.deliver(frame)
	}
}
