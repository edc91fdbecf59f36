package dispatch

// Acknowledger performs acknowledgment-style operations against the
// underlying client for one delivered message. The transport layer supplies
// an implementation per delivery; the bridge only threads it through to the
// Caller handle.
type Acknowledger interface {
	Ack() error
}

// Caller is the acknowledgment handle passed as the second argument to a
// handler that declared OnMessageWithCaller. It is bound to the message
// that triggered the dispatch and carries enough identity for later
// acknowledgment calls against the client.
//
// Ownership transfers entirely to the handler at invocation; the bridge
// keeps no reference and performs no lifecycle tracking after construction.
type Caller struct {
	ack       Acknowledger
	messageID uint16
	qos       byte
}

// newCaller constructs a handle bound to the originating message. It trusts
// its caller: no validation that the message is still in flight.
func newCaller(ack Acknowledger, messageID uint16, qos byte) *Caller {
	return &Caller{
		ack:       ack,
		messageID: messageID,
		qos:       qos,
	}
}

// MessageID returns the packet identifier of the originating message.
func (c *Caller) MessageID() uint16 {
	return c.messageID
}

// QoS returns the quality-of-service level of the originating message.
func (c *Caller) QoS() byte {
	return c.qos
}

// Ack acknowledges the originating message on the underlying client.
//
// Returns:
//   - error: ErrNoAcknowledger if the handle carries no client reference,
//     otherwise whatever the transport reports
func (c *Caller) Ack() error {
	if c.ack == nil {
		return ErrNoAcknowledger
	}
	return c.ack.Ack()
}
