package store

import (
	"bytes"
	"encoding/gob"
)

// Deque is a ring-buffer-backed double-ended queue of strings, giving the
// O(1) push/pop at both ends that the List shape requires (§3: "supporting
// O(1) push/pop at both ends"). It implements GobEncoder/GobDecoder so it
// still round-trips through the plain ordered-slice encoding the snapshot
// format expects, without exposing the ring's internal head/size state.
type Deque struct {
	buf  []string
	head int
	size int
}

// NewDeque builds a deque pre-loaded with vals, in order.
func NewDeque(vals ...string) *Deque {
	d := &Deque{}
	for _, v := range vals {
		d.PushBack(v)
	}
	return d
}

func (d *Deque) Len() int { return d.size }

func (d *Deque) grow() {
	newCap := len(d.buf) * 2
	if newCap == 0 {
		newCap = 8
	}
	newBuf := make([]string, newCap)
	for i := 0; i < d.size; i++ {
		newBuf[i] = d.buf[(d.head+i)%len(d.buf)]
	}
	d.buf = newBuf
	d.head = 0
}

// PushFront is LPUSH's primitive.
func (d *Deque) PushFront(v string) {
	if d.size == len(d.buf) {
		d.grow()
	}
	d.head = (d.head - 1 + len(d.buf)) % len(d.buf)
	d.buf[d.head] = v
	d.size++
}

// PushBack is RPUSH's primitive.
func (d *Deque) PushBack(v string) {
	if d.size == len(d.buf) {
		d.grow()
	}
	d.buf[(d.head+d.size)%len(d.buf)] = v
	d.size++
}

// PopFront is LPOP's primitive.
func (d *Deque) PopFront() (string, bool) {
	if d.size == 0 {
		return "", false
	}
	v := d.buf[d.head]
	d.buf[d.head] = ""
	d.head = (d.head + 1) % len(d.buf)
	d.size--
	return v, true
}

// PopBack is RPOP's primitive.
func (d *Deque) PopBack() (string, bool) {
	if d.size == 0 {
		return "", false
	}
	idx := (d.head + d.size - 1) % len(d.buf)
	v := d.buf[idx]
	d.buf[idx] = ""
	d.size--
	return v, true
}

// At returns the element at logical index i (0-based from the front).
func (d *Deque) At(i int) (string, bool) {
	if i < 0 || i >= d.size {
		return "", false
	}
	return d.buf[(d.head+i)%len(d.buf)], true
}

// ToSlice returns the deque's contents in logical order, front to back.
func (d *Deque) ToSlice() []string {
	out := make([]string, d.size)
	for i := 0; i < d.size; i++ {
		out[i] = d.buf[(d.head+i)%len(d.buf)]
	}
	return out
}

// GobEncode satisfies gob.GobEncoder by encoding the logical ordered
// contents rather than the ring's internal layout.
func (d *Deque) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(d.ToSlice()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode satisfies gob.GobDecoder by rebuilding the ring from the
// ordered contents encoded by GobEncode.
func (d *Deque) GobDecode(data []byte) error {
	var vals []string
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&vals); err != nil {
		return err
	}
	*d = Deque{}
	for _, v := range vals {
		d.PushBack(v)
	}
	return nil
}
