package memory

import (
	"context"
	"encoding/json"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/coop-inventory/internal/repository"
)

type outboxRecord struct {
	id           uuid.UUID
	topic        string
	headers      map[string]string
	payload      json.RawMessage
	partitionKey *string
	createdAt    time.Time
}

type outboxMsgRepository struct {
	view view
}

func (r *outboxMsgRepository) CreateOutboxMsg(_ context.Context, params repository.CreateOutboxMsgParams) error {
	rec := outboxRecord{
		id:           uuid.New(),
		topic:        params.Topic,
		headers:      maps.Clone(params.Headers),
		payload:      append(json.RawMessage(nil), params.Payload...),
		partitionKey: params.PartitionKey,
		createdAt:    time.Now(),
	}

	r.view.write(func(st *state) {
		st.outbox = append(st.outbox, rec)
	})

	return nil
}

func (r *outboxMsgRepository) ListUnprocessedOutboxMsgs(_ context.Context, params repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	var results []repository.ListUnprocessedOutboxMsgsResult
	r.view.read(func(st *state) {
		for _, rec := range st.outbox {
			if len(results) >= int(params.BatchSize) {
				return
			}
			headers := maps.Clone(rec.headers)
			if headers == nil {
				headers = map[string]string{}
			}
			results = append(results, repository.ListUnprocessedOutboxMsgsResult{
				ID:           rec.id,
				Topic:        rec.topic,
				Headers:      headers,
				Payload:      rec.payload,
				PartitionKey: rec.partitionKey,
			})
		}
	})

	return results, nil
}

func (r *outboxMsgRepository) BulkUpdateOutboxMsgs(_ context.Context, params repository.BulkUpdateOutboxMsgsParams) error {
	updates := make(map[uuid.UUID]struct{}, len(params.Items))
	for _, item := range params.Items {
		updates[item.ID] = struct{}{}
	}

	// processed messages are dropped; failures were already logged by the relay
	r.view.write(func(st *state) {
		st.outbox = slices.DeleteFunc(st.outbox, func(rec outboxRecord) bool {
			_, ok := updates[rec.id]
			return ok
		})
	})

	return nil
}
