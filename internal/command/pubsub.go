package command

import (
	"github.com/nullbyte-labs/kvstored/internal/resp"
)

func init() {
	register("SUBSCRIBE", cmdSubscribe)
	register("UNSUBSCRIBE", cmdUnsubscribe)
	register("PSUBSCRIBE", cmdPSubscribe)
	register("PUNSUBSCRIBE", cmdPUnsubscribe)
	register("PUBLISH", cmdPublish)
}

// subEnvelope builds the [kind, name, count] reply array used by all four
// (un)subscribe variants (§4.G).
func subEnvelope(kind, name string, count int) resp.Value {
	return resp.ArrayOf(resp.Bulk(kind), resp.Bulk(name), resp.Int(int64(count)))
}

// deliverAllButLast writes every envelope but the last directly to c's
// socket and returns the last to the dispatcher as the call's own reply —
// matching the teacher's multi-channel SUBSCRIBE batching, since a single
// RESP request can only produce one "return value" through Dispatch but a
// multi-arg SUBSCRIBE must emit one envelope per channel.
func deliverAllButLast(c *Client, envelopes []resp.Value) resp.Value {
	if len(envelopes) == 0 {
		return resp.SilentValue()
	}
	for _, env := range envelopes[:len(envelopes)-1] {
		c.Deliver(resp.Serialize(env))
	}
	return envelopes[len(envelopes)-1]
}

func cmdSubscribe(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) < 1 {
		return resp.Arity("subscribe")
	}
	envelopes := make([]resp.Value, len(args))
	for i, a := range args {
		n := d.Router.Subscribe(a.Bulk, c)
		envelopes[i] = subEnvelope("subscribe", a.Bulk, n)
	}
	return deliverAllButLast(c, envelopes)
}

func cmdPSubscribe(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) < 1 {
		return resp.Arity("psubscribe")
	}
	envelopes := make([]resp.Value, len(args))
	for i, a := range args {
		n := d.Router.PSubscribe(a.Bulk, c)
		envelopes[i] = subEnvelope("psubscribe", a.Bulk, n)
	}
	return deliverAllButLast(c, envelopes)
}

func cmdUnsubscribe(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	var removals []resp.Value
	if len(args) == 0 {
		for _, r := range d.Router.Unsubscribe("", c) {
			removals = append(removals, subEnvelope("unsubscribe", r.Name, r.Remaining))
		}
	} else {
		for _, a := range args {
			for _, r := range d.Router.Unsubscribe(a.Bulk, c) {
				removals = append(removals, subEnvelope("unsubscribe", r.Name, r.Remaining))
			}
		}
	}
	return deliverAllButLast(c, removals)
}

func cmdPUnsubscribe(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	var removals []resp.Value
	if len(args) == 0 {
		for _, r := range d.Router.PUnsubscribe("", c) {
			removals = append(removals, subEnvelope("punsubscribe", r.Name, r.Remaining))
		}
	} else {
		for _, a := range args {
			for _, r := range d.Router.PUnsubscribe(a.Bulk, c) {
				removals = append(removals, subEnvelope("punsubscribe", r.Name, r.Remaining))
			}
		}
	}
	return deliverAllButLast(c, removals)
}

func cmdPublish(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) != 2 {
		return resp.Arity("publish")
	}
	channel, msg := args[0].Bulk, args[1].Bulk
	exactFrame := resp.Serialize(resp.ArrayOf(resp.Bulk("message"), resp.Bulk(channel), resp.Bulk(msg)))
	n := d.Router.Publish(channel, exactFrame, func(pattern string) []byte {
		return resp.Serialize(resp.ArrayOf(resp.Bulk("pmessage"), resp.Bulk(pattern), resp.Bulk(channel), resp.Bulk(msg)))
	})
	return resp.Int(n)
}
