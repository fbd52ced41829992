package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tuanvumaihuynh/coop-inventory/internal/apperr"
	"github.com/tuanvumaihuynh/coop-inventory/internal/repository"
	"github.com/tuanvumaihuynh/coop-inventory/pkg/outbox"
	"github.com/tuanvumaihuynh/coop-inventory/pkg/ptr"
	"github.com/tuanvumaihuynh/coop-inventory/pkg/zerror"
)

// writeEvent stores ev in the outbox of tx, keyed by partitionKey.
func writeEvent(ctx context.Context, tx repository.Store, topic, partitionKey string, ev any) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}

	if err := tx.OutboxMsgs().CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
		Topic:        topic,
		Headers:      outbox.BuildHeaders(ctx),
		Payload:      payload,
		PartitionKey: ptr.New(partitionKey),
	}); err != nil {
		return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
	}

	return nil
}

// classifyErr turns a store error into an application error. Application
// errors pass through unless the rollback failed, in which case nothing can
// be said about what was applied.
func classifyErr(err error) error {
	if errors.Is(err, repository.ErrRollbackFailed) {
		return apperr.InconsistentStateErr.WrapParent(err)
	}

	var zErr zerror.ZError
	if errors.As(err, &zErr) {
		return zErr
	}

	return apperr.StorageErr.WrapParent(err)
}
