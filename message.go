package wsrpc

// Message is the unit of communication. Type identifies the message's
// semantic kind and selects decoders and handlers; ID is the opaque
// correlation identifier linking a request to its reply, empty for
// messages outside any request/reply exchange.
type Message interface {
	Type() string
	ID() string
}

// Request is a Message whose correlation identifier is assigned by the
// client immediately before sending. After the send the message must be
// treated as immutable.
type Request interface {
	Message
	SetID(id string)
}

// RPCMessage is the embeddable base for typed messages. It carries the
// envelope fields of the default JSON wire form.
type RPCMessage struct {
	MessageType string `json:"type"`
	MessageID   string `json:"id,omitempty"`
}

func (m *RPCMessage) Type() string { return m.MessageType }

func (m *RPCMessage) ID() string { return m.MessageID }

func (m *RPCMessage) SetID(id string) { m.MessageID = id }
