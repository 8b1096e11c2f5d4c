package wsrpc

import (
	"encoding/json"
	"fmt"
)

// Encoder produces the wire frame for an outbound message. Encode must be
// pure: no side effects, safe for concurrent use.
type Encoder interface {
	Encode(msg Message) ([]byte, error)
}

// Decoder parses an inbound frame into a typed message. A decoder that
// does not recognize the frame's vocabulary returns ErrSkipDecoder so the
// Registry can try the next one in order.
type Decoder interface {
	Decode(frame []byte) (Message, error)
}

// Codec is an encode/decode pair for one message vocabulary.
type Codec interface {
	Encoder
	Decoder
}

// Registry holds the codecs of one connection: an ordered list of
// decoders tried in order against each inbound frame, and exactly one
// encoder per outbound message type. Populate it before the connection is
// served; it is read-only afterwards.
type Registry struct {
	decoders []Decoder
	encoders map[string]Encoder
}

// AddDecoder appends dec to the ordered decode chain.
func (r *Registry) AddDecoder(dec Decoder) {
	r.decoders = append(r.decoders, dec)
}

// SetEncoder assigns the encoder for outbound messages of msgType.
// Assigning a type twice is rejected.
func (r *Registry) SetEncoder(msgType string, enc Encoder) error {
	if r.encoders == nil {
		r.encoders = map[string]Encoder{}
	}
	if _, ok := r.encoders[msgType]; ok {
		return fmt.Errorf("encoder already registered for type %q", msgType)
	}
	r.encoders[msgType] = enc
	return nil
}

// AddCodec registers codec as a decoder and as the encoder for msgType.
func (r *Registry) AddCodec(msgType string, codec Codec) error {
	if err := r.SetEncoder(msgType, codec); err != nil {
		return err
	}
	r.AddDecoder(codec)
	return nil
}

// Encode produces the wire frame for msg using the encoder registered for
// its type.
func (r *Registry) Encode(msg Message) ([]byte, error) {
	enc, ok := r.encoders[msg.Type()]
	if !ok {
		return nil, EncodeError{Type: msg.Type(), Cause: errNoEncoder}
	}
	frame, err := enc.Encode(msg)
	if err != nil {
		return nil, EncodeError{Type: msg.Type(), Cause: err}
	}
	return frame, nil
}

// Decode parses frame with the first decoder that accepts it.
func (r *Registry) Decode(frame []byte) (Message, error) {
	for _, dec := range r.decoders {
		msg, err := dec.Decode(frame)
		if err == ErrSkipDecoder {
			continue
		}
		if err != nil {
			return nil, DecodeError{Cause: err}
		}
		return msg, nil
	}
	return nil, DecodeError{Cause: errNoDecoder}
}

var _ Codec = JSONCodec{}

// JSONCodec is a Codec for a single message type whose wire form is a
// JSON object carrying the type and id envelope fields alongside the
// payload.
type JSONCodec struct {
	// MsgType is the type tag this codec speaks.
	MsgType string
	// New returns a fresh message to decode into, typically a pointer to
	// a struct embedding RPCMessage.
	New func() Message
}

type envelope struct {
	Type string `json:"type"`
}

func (c JSONCodec) Encode(msg Message) ([]byte, error) {
	if msg.Type() != c.MsgType {
		return nil, fmt.Errorf("codec for %q cannot encode %q", c.MsgType, msg.Type())
	}
	return json.Marshal(msg)
}

func (c JSONCodec) Decode(frame []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		// Not a JSON envelope; some other decoder may speak this frame.
		return nil, ErrSkipDecoder
	}
	if env.Type != c.MsgType {
		return nil, ErrSkipDecoder
	}
	msg := c.New()
	if err := json.Unmarshal(frame, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
