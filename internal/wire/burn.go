package wire

import "fmt"

// BurnBodyVersion is the single supported burn payload version.
const BurnBodyVersion uint32 = 1

// BodyLen is the fixed length of the burn payload; hook data occupies the
// remainder and may be empty.
const BodyLen = 200

// HookTargetLen is the length of the target identity that prefixes hook data.
const HookTargetLen = 20

// Burn payload field offsets, within the message body view.
const (
	offBodyVersion     = 0
	offBurnToken       = 4
	offMintRecipient   = 36
	offAmount          = 68
	offMessageSender   = 100
	offMaxFee          = 132
	offFeeExecuted     = 164
	offExpirationBlock = 196
	offHookData        = BodyLen
)

// BurnBody is a parsed burn payload. Like Message, it reads fields in place
// and is only obtainable through ParseBurnBody.
type BurnBody struct {
	v View
}

// ParseBurnBody validates the payload's length and version. Hook data is
// extracted but never interpreted or executed here.
func ParseBurnBody(v View) (BurnBody, error) {
	if v.Len() < BodyLen {
		return BurnBody{}, fmt.Errorf("burn body is %d bytes, needs %d: %w", v.Len(), BodyLen, ErrOutOfBounds)
	}
	ver, err := v.Uint32(offBodyVersion)
	if err != nil {
		return BurnBody{}, err
	}
	if ver != BurnBodyVersion {
		return BurnBody{}, fmt.Errorf("burn body version %d: %w", ver, ErrUnsupportedBodyVersion)
	}
	return BurnBody{v: v}, nil
}

func (b BurnBody) Version() uint32 {
	ver, _ := b.v.Uint32(offBodyVersion)
	return ver
}

// BurnToken identifies the token burned on the source chain.
func (b BurnBody) BurnToken() []byte {
	t, _ := b.v.Bytes32(offBurnToken)
	return t
}

// MintRecipient is the identity funds are minted to on this side.
func (b BurnBody) MintRecipient() []byte {
	r, _ := b.v.Bytes32(offMintRecipient)
	return r
}

// Amount is the burned amount in minor units. Fails with ErrValueOverflow
// when the on-wire value exceeds 64 bits.
func (b BurnBody) Amount() (uint64, error) {
	return b.v.Amount(offAmount)
}

// MessageSender is the identity that originated the burn.
func (b BurnBody) MessageSender() []byte {
	s, _ := b.v.Bytes32(offMessageSender)
	return s
}

func (b BurnBody) MaxFee() (uint64, error) {
	return b.v.Amount(offMaxFee)
}

func (b BurnBody) FeeExecuted() (uint64, error) {
	return b.v.Amount(offFeeExecuted)
}

// ExpirationBlock is the block height after which the message lapses.
// Enforcement belongs to the external authority, not this codec.
func (b BurnBody) ExpirationBlock() uint32 {
	e, _ := b.v.Uint32(offExpirationBlock)
	return e
}

// HookData returns the raw trailing hook bytes. Zero length means the
// message carries no hook.
func (b BurnBody) HookData() View {
	h, _ := b.v.Tail(offHookData)
	return h
}

// ParseHook splits hook data into its target identity and call payload by
// the wire convention target(20) || payload(rest). The payload may be empty.
//
// Hook execution is deliberately outside the relay pipeline's atomic unit: a
// failed hook call must never block or revert message relay. Operators
// enabling hook dispatch should note that permissionless relay of
// hook-bearing messages lets a malicious caller consume the message's nonce
// while dropping the hook side effect.
func ParseHook(v View) (target, payload []byte, err error) {
	if v.Len() < HookTargetLen {
		return nil, nil, fmt.Errorf("hook data is %d bytes, target needs %d: %w", v.Len(), HookTargetLen, ErrOutOfBounds)
	}
	b := v.Bytes()
	return b[:HookTargetLen:HookTargetLen], b[HookTargetLen:], nil
}
