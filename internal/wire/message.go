package wire

import (
	"errors"
	"fmt"
)

// MessageVersion is the single supported outer header version.
const MessageVersion uint32 = 1

// HeaderLen is the fixed length of the outer header; the message body
// occupies the remainder.
const HeaderLen = 148

// Outer header field offsets.
const (
	offVersion            = 0
	offSourceDomain       = 4
	offDestinationDomain  = 8
	offNonce              = 12
	offSender             = 44
	offRecipient          = 76
	offDestinationCaller  = 108
	offMinFinality        = 140
	offFinalityExecuted   = 144
	offBody               = HeaderLen
)

var (
	// ErrUnsupportedVersion is returned for any header version other than
	// MessageVersion.
	ErrUnsupportedVersion = errors.New("unsupported message version")

	// ErrUnsupportedBodyVersion is returned for any burn body version other
	// than BurnBodyVersion.
	ErrUnsupportedBodyVersion = errors.New("unsupported burn body version")
)

// Message is a parsed outer header over an attested message buffer. The
// accessors read fields in place; they never allocate or copy. A Message is
// only obtainable through ParseMessage, so every fixed-offset read is in
// bounds by construction.
type Message struct {
	v View
}

// ParseMessage validates the outer header's length and version and wraps the
// buffer. No cryptography happens here: attestation verification belongs to
// the external authority.
func ParseMessage(buf []byte) (Message, error) {
	v := NewView(buf)
	if v.Len() < HeaderLen {
		return Message{}, fmt.Errorf("message is %d bytes, header needs %d: %w", v.Len(), HeaderLen, ErrOutOfBounds)
	}
	ver, err := v.Uint32(offVersion)
	if err != nil {
		return Message{}, err
	}
	if ver != MessageVersion {
		return Message{}, fmt.Errorf("message version %d: %w", ver, ErrUnsupportedVersion)
	}
	return Message{v: v}, nil
}

func (m Message) Version() uint32 {
	ver, _ := m.v.Uint32(offVersion)
	return ver
}

// SourceDomain identifies the chain the burn happened on.
func (m Message) SourceDomain() uint32 {
	d, _ := m.v.Uint32(offSourceDomain)
	return d
}

// DestinationDomain identifies the chain this ledger is bound to.
func (m Message) DestinationDomain() uint32 {
	d, _ := m.v.Uint32(offDestinationDomain)
	return d
}

// Nonce is the message's 32-byte replay marker.
func (m Message) Nonce() []byte {
	b, _ := m.v.Bytes32(offNonce)
	return b
}

func (m Message) Sender() []byte {
	b, _ := m.v.Bytes32(offSender)
	return b
}

func (m Message) Recipient() []byte {
	b, _ := m.v.Bytes32(offRecipient)
	return b
}

func (m Message) DestinationCaller() []byte {
	b, _ := m.v.Bytes32(offDestinationCaller)
	return b
}

func (m Message) MinFinalityThreshold() uint32 {
	t, _ := m.v.Uint32(offMinFinality)
	return t
}

func (m Message) FinalityThresholdExecuted() uint32 {
	t, _ := m.v.Uint32(offFinalityExecuted)
	return t
}

// Body returns the variable-length message body view (everything after the
// fixed header).
func (m Message) Body() View {
	body, _ := m.v.Tail(offBody)
	return body
}
