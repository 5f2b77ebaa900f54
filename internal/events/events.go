// Package events defines the notification sink for ledger observers.
//
// Notifications are append-only and externally observable: group created,
// group edited, items paid. The ledger emits them after each successful
// mutation and never reads them back or branches on whether a sink is
// attached; constructors default to Nop when given a nil sink.
package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/chaintab/chaintab/internal/models"
)

// Sink receives ledger notifications. Implementations must tolerate being
// called from the ledger's serialized mutation path and should not block.
type Sink interface {
	GroupCreated(ctx context.Context, group *models.Group, items []models.Item)
	GroupEdited(ctx context.Context, group *models.Group, items []models.Item)
	ItemsPaid(ctx context.Context, groupID uint64, payer string, itemIDs []uint32, total uint64)
}

// Nop discards all notifications.
type Nop struct{}

func (Nop) GroupCreated(context.Context, *models.Group, []models.Item)   {}
func (Nop) GroupEdited(context.Context, *models.Group, []models.Item)    {}
func (Nop) ItemsPaid(context.Context, uint64, string, []uint32, uint64)  {}

// OrNop returns sink, or Nop when sink is nil.
func OrNop(sink Sink) Sink {
	if sink == nil {
		return Nop{}
	}
	return sink
}

// LogSink writes notifications to slog.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s LogSink) GroupCreated(ctx context.Context, group *models.Group, items []models.Item) {
	s.logger().InfoContext(ctx, "group created",
		"group_id", group.ID,
		"owner", group.Owner,
		"name", group.Name,
		"item_count", len(items),
	)
}

func (s LogSink) GroupEdited(ctx context.Context, group *models.Group, items []models.Item) {
	s.logger().InfoContext(ctx, "group edited",
		"group_id", group.ID,
		"owner", group.Owner,
		"item_count", len(items),
	)
}

func (s LogSink) ItemsPaid(ctx context.Context, groupID uint64, payer string, itemIDs []uint32, total uint64) {
	s.logger().InfoContext(ctx, "items paid",
		"group_id", groupID,
		"payer", payer,
		"item_ids", itemIDs,
		"total", total,
	)
}

// Appender is the slice of the store the persistent sink needs.
type Appender interface {
	AppendEvent(ctx context.Context, event *models.Event) error
}

// StoreSink persists notifications to the append-only events table.
// Append failures are logged and swallowed: observability must never fail a
// ledger mutation that already committed.
type StoreSink struct {
	Appender Appender
	Logger   *slog.Logger
}

func (s StoreSink) append(ctx context.Context, event *models.Event) {
	if err := s.Appender.AppendEvent(ctx, event); err != nil {
		logger := s.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.ErrorContext(ctx, "failed to append event", "kind", event.Kind, "group_id", event.GroupID, "error", err)
	}
}

type itemPayload struct {
	Names  []string `json:"names"`
	Prices []uint64 `json:"prices"`
}

func marshalItems(items []models.Item) string {
	payload := itemPayload{
		Names:  make([]string, len(items)),
		Prices: make([]uint64, len(items)),
	}
	for i, item := range items {
		payload.Names[i] = item.Name
		payload.Prices[i] = item.Price
	}
	b, _ := json.Marshal(payload)
	return string(b)
}

func (s StoreSink) GroupCreated(ctx context.Context, group *models.Group, items []models.Item) {
	s.append(ctx, &models.Event{
		Kind:    models.EventGroupCreated,
		GroupID: group.ID,
		Actor:   group.Owner,
		Payload: marshalItems(items),
	})
}

func (s StoreSink) GroupEdited(ctx context.Context, group *models.Group, items []models.Item) {
	s.append(ctx, &models.Event{
		Kind:    models.EventGroupEdited,
		GroupID: group.ID,
		Actor:   group.Owner,
		Payload: marshalItems(items),
	})
}

func (s StoreSink) ItemsPaid(ctx context.Context, groupID uint64, payer string, itemIDs []uint32, total uint64) {
	b, _ := json.Marshal(struct {
		ItemIDs []uint32 `json:"item_ids"`
		Total   uint64   `json:"total"`
	}{itemIDs, total})
	s.append(ctx, &models.Event{
		Kind:    models.EventItemsPaid,
		GroupID: groupID,
		Actor:   payer,
		Payload: string(b),
	})
}

// Multi fans notifications out to several sinks in order.
type Multi []Sink

func (m Multi) GroupCreated(ctx context.Context, group *models.Group, items []models.Item) {
	for _, s := range m {
		s.GroupCreated(ctx, group, items)
	}
}

func (m Multi) GroupEdited(ctx context.Context, group *models.Group, items []models.Item) {
	for _, s := range m {
		s.GroupEdited(ctx, group, items)
	}
}

func (m Multi) ItemsPaid(ctx context.Context, groupID uint64, payer string, itemIDs []uint32, total uint64) {
	for _, s := range m {
		s.ItemsPaid(ctx, groupID, payer, itemIDs, total)
	}
}
