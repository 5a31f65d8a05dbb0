// Package split evaluates the first transition of a network on an encrypted
// input. The client keeps the secret key and the rest of the network, the
// server only sees ciphertexts and the first weight matrix.
package split

import (
	"encoding/gob"
	"io"

	"github.com/pkg/errors"
)

func init() {
	// Register types for gob encoding
	gob.Register(ForwardPayload{})
}

// MessageType defines message types for split inference
type MessageType int

const (
	MsgForwardInput MessageType = iota
	MsgForwardOutput
	MsgDone
	MsgError
)

// Message represents a message in the split inference protocol
type Message struct {
	Type    MessageType
	Payload interface{}
}

// ForwardPayload carries serialized ciphertexts. A request holds the encrypted
// input, a response one ciphertext per destination neuron.
type ForwardPayload struct {
	RequestID   int
	Ciphertexts [][]byte
	Level       int
	ScaleFloat  float64
}

// Protocol handles split inference communication
type Protocol struct {
	encoder *gob.Encoder
	decoder *gob.Decoder
}

// NewProtocol creates a new protocol handler
func NewProtocol(r io.Reader, w io.Writer) *Protocol {
	p := &Protocol{}
	if w != nil {
		p.encoder = gob.NewEncoder(w)
	}
	if r != nil {
		p.decoder = gob.NewDecoder(r)
	}
	return p
}

// Send sends a message
func (p *Protocol) Send(msg *Message) error {
	return p.encoder.Encode(msg)
}

// Receive receives a message
func (p *Protocol) Receive() (*Message, error) {
	var msg Message
	if err := p.decoder.Decode(&msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// SendForward sends an encrypted input
func (p *Protocol) SendForward(requestID int, ctBytes []byte, level int, scale float64) error {
	return p.Send(&Message{
		Type: MsgForwardInput,
		Payload: ForwardPayload{
			RequestID:   requestID,
			Ciphertexts: [][]byte{ctBytes},
			Level:       level,
			ScaleFloat:  scale,
		},
	})
}

// SendSums sends the encrypted weighted sums of a request
func (p *Protocol) SendSums(requestID int, cts [][]byte, level int, scale float64) error {
	return p.Send(&Message{
		Type: MsgForwardOutput,
		Payload: ForwardPayload{
			RequestID:   requestID,
			Ciphertexts: cts,
			Level:       level,
			ScaleFloat:  scale,
		},
	})
}

// SendDone signals completion
func (p *Protocol) SendDone() error {
	return p.Send(&Message{Type: MsgDone})
}

// SendError sends an error message
func (p *Protocol) SendError(err error) error {
	return p.Send(&Message{
		Type:    MsgError,
		Payload: err.Error(),
	})
}

// ReceiveForward receives a forward payload, request or response
func (p *Protocol) ReceiveForward() (*ForwardPayload, error) {
	msg, err := p.Receive()
	if err != nil {
		return nil, err
	}
	return forwardPayload(msg)
}

func forwardPayload(msg *Message) (*ForwardPayload, error) {
	if msg.Type == MsgError {
		return nil, errors.Errorf("remote error: %v", msg.Payload)
	}
	if msg.Type == MsgDone {
		return nil, io.EOF
	}
	if msg.Type != MsgForwardInput && msg.Type != MsgForwardOutput {
		return nil, errors.Errorf("expected forward message, got %d", msg.Type)
	}
	payload, ok := msg.Payload.(ForwardPayload)
	if !ok {
		return nil, errors.New("invalid forward payload type")
	}
	return &payload, nil
}
