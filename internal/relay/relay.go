// Package relay composes cross-chain message validation, external
// authentication, and ledger settlement into one pipeline.
package relay

import (
	"context"
	"encoding/hex"
	"log/slog"

	"github.com/chaintab/chaintab/internal/authority"
	"github.com/chaintab/chaintab/internal/ledger"
	"github.com/chaintab/chaintab/internal/wire"
)

// PayerPrefix marks paidBy identities that settled through the relay rather
// than a registered user account.
const PayerPrefix = "cctp:"

// HookDispatcher delivers extracted hook data after a successful relay.
// Dispatch is best effort and outside the pipeline's atomic unit: a failed
// hook must never block or revert a relay that already settled.
type HookDispatcher interface {
	Dispatch(ctx context.Context, target, payload []byte) error
}

// Pipeline validates attested messages and applies them as settlement.
type Pipeline struct {
	ledger    *ledger.Ledger
	authority authority.Authority
	hooks     HookDispatcher // nil when hook dispatch is not configured
}

// New creates a relay pipeline. hooks may be nil to disable hook dispatch.
func New(l *ledger.Ledger, auth authority.Authority, hooks HookDispatcher) *Pipeline {
	return &Pipeline{ledger: l, authority: auth, hooks: hooks}
}

// Relay runs the whole pipeline: structural and version validation of the
// outer header and burn body, a staged settlement validation, the external
// authenticate-and-mint call, and the settlement write. Any failure aborts
// the entire call with the ledger untouched; in particular, a structurally
// or semantically invalid message fails before the authority is ever
// invoked. Returns true only when every stage completed.
func (p *Pipeline) Relay(ctx context.Context, message, attestation []byte, groupID uint64, itemIDs []uint32, amount uint64) (bool, error) {
	msg, err := wire.ParseMessage(message)
	if err != nil {
		return false, err
	}
	body, err := wire.ParseBurnBody(msg.Body())
	if err != nil {
		return false, err
	}

	if burned, err := body.Amount(); err != nil {
		return false, err
	} else if burned != amount {
		// Not an invariant of the pipeline: the mint credits the treasury
		// with the burned amount while settlement only requires the exact
		// item total. Worth surfacing for operators reconciling balances.
		slog.Warn("burned amount differs from settlement amount",
			"group_id", groupID, "burned", burned, "amount", amount)
	}

	payer := PayerPrefix + hex.EncodeToString(body.MessageSender())
	err = p.ledger.SettleAuthenticated(ctx, payer, groupID, itemIDs, amount, func(ctx context.Context) (bool, error) {
		return p.authority.ReceiveMessage(ctx, message, attestation)
	})
	if err != nil {
		return false, err
	}

	slog.Info("Relay settled",
		"group_id", groupID,
		"item_ids", itemIDs,
		"amount", amount,
		"source_domain", msg.SourceDomain(),
		"nonce", hex.EncodeToString(msg.Nonce()),
	)

	p.dispatchHook(ctx, body)
	return true, nil
}

// dispatchHook delivers any trailing hook data, best effort.
func (p *Pipeline) dispatchHook(ctx context.Context, body wire.BurnBody) {
	if p.hooks == nil || body.HookData().Len() == 0 {
		return
	}
	target, payload, err := wire.ParseHook(body.HookData())
	if err != nil {
		slog.Warn("malformed hook data, skipping dispatch", "error", err)
		return
	}
	if err := p.hooks.Dispatch(ctx, target, payload); err != nil {
		slog.Warn("hook dispatch failed",
			"target", hex.EncodeToString(target), "error", err)
	}
}
