package dispatch

// RawMessage is the subset of the transport client's delivered message
// consumed by the envelope builder. paho.mqtt.golang's Message interface
// satisfies it directly.
type RawMessage interface {
	Payload() []byte
	MessageID() uint16
	Qos() byte
	Retained() bool
	Duplicate() bool
}

// Message is the normalized envelope for one delivered message.
//
// A Message is created fresh per dispatch call and owned by that call;
// after the handler invocation settles the bridge keeps no reference.
// Treat it as immutable: handlers must not retain or modify Payload
// beyond their own execution.
type Message struct {
	// Payload is the raw message body. Zero length is legal.
	Payload []byte

	// MessageID is the transport-assigned packet identifier.
	MessageID uint16

	// QoS is the delivery quality-of-service level. Values are passed
	// through unvalidated; range enforcement is the transport's job.
	QoS byte

	// Retained reports whether the broker delivered a retained message.
	Retained bool

	// Duplicate reports whether the transport flagged a redelivery.
	Duplicate bool
}

// newMessage builds an envelope from a delivered raw message.
// Pure and total: it never fails, whatever the raw values are.
func newMessage(raw RawMessage) Message {
	return Message{
		Payload:   raw.Payload(),
		MessageID: raw.MessageID(),
		QoS:       raw.Qos(),
		Retained:  raw.Retained(),
		Duplicate: raw.Duplicate(),
	}
}
