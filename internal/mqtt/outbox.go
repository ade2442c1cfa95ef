package mqtt

import "github.com/sirupsen/logrus"

// pendingMsg is a serialized message waiting for the broker.
type pendingMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool

	// latestOnly marks full-status messages. A newer one on the same topic
	// replaces a pending one instead of queueing behind it.
	latestOnly bool
}

// outbox holds messages published while the broker is unreachable and hands
// them back, oldest first, for replay. Scale events are never coalesced; when
// the outbox is full the oldest message is dropped and counted.
// Not safe for concurrent use.
type outbox struct {
	msgs     []pendingMsg
	capacity int
	dropped  int
	log      logrus.FieldLogger
}

func newOutbox(capacity int, log logrus.FieldLogger) *outbox {
	return &outbox{
		msgs:     make([]pendingMsg, 0, capacity),
		capacity: capacity,
		log:      log,
	}
}

func (o *outbox) add(m pendingMsg) {
	if m.latestOnly {
		for i := range o.msgs {
			if o.msgs[i].latestOnly && o.msgs[i].topic == m.topic {
				o.remove(i)
				break
			}
		}
	}
	if len(o.msgs) == o.capacity {
		if o.dropped == 0 {
			o.log.Warnf("outbox full (%d messages), dropping oldest", o.capacity)
		}
		o.remove(0)
		o.dropped++
	}
	o.msgs = append(o.msgs, m)
}

func (o *outbox) remove(i int) {
	copy(o.msgs[i:], o.msgs[i+1:])
	o.msgs = o.msgs[:len(o.msgs)-1]
}

// take empties the outbox, returning the pending messages and how many were
// dropped since the last take.
func (o *outbox) take() ([]pendingMsg, int) {
	if len(o.msgs) == 0 && o.dropped == 0 {
		return nil, 0
	}
	msgs := make([]pendingMsg, len(o.msgs))
	copy(msgs, o.msgs)
	dropped := o.dropped
	o.msgs = o.msgs[:0]
	o.dropped = 0
	return msgs, dropped
}

func (o *outbox) len() int {
	return len(o.msgs)
}
