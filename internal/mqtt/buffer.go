package mqtt

import "log"

// offlineQueue holds the most recent messages published while the broker
// was unreachable. Once full, each push overwrites the oldest entry.
// Not safe for concurrent use; RealPublisher guards it with its mutex.
type offlineQueue struct {
	slots   []Message
	next    int // slot the next push writes
	size    int
	dropped int // overwritten since last drain
}

func newOfflineQueue(capacity int) *offlineQueue {
	return &offlineQueue{slots: make([]Message, capacity)}
}

func (q *offlineQueue) push(msg Message) {
	full := q.size == len(q.slots)
	q.slots[q.next] = msg
	q.next = (q.next + 1) % len(q.slots)
	if !full {
		q.size++
		return
	}

	if q.dropped == 0 {
		log.Printf("mqtt: offline queue full (%d messages), dropping oldest", len(q.slots))
	}
	q.dropped++
}

// drain returns queued messages oldest first and empties the queue.
func (q *offlineQueue) drain() []Message {
	if q.size == 0 {
		return nil
	}

	oldest := q.next - q.size
	if oldest < 0 {
		oldest += len(q.slots)
	}
	out := make([]Message, q.size)
	for i := range out {
		out[i] = q.slots[(oldest+i)%len(q.slots)]
		q.slots[(oldest+i)%len(q.slots)] = Message{}
	}

	q.next, q.size, q.dropped = 0, 0, 0
	return out
}

func (q *offlineQueue) len() int {
	return q.size
}
