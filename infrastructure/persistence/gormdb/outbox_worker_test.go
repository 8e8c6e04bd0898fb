package gormdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SChris-dev/EcoShop-API/infrastructure/messaging"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPublisher struct {
	sent []messaging.Message
	err  error
}

func (p *stubPublisher) Publish(_ context.Context, msg messaging.Message) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, msg)
	return nil
}

func (p *stubPublisher) Close() error { return nil }

type countingRecorder map[string]int

func (c countingRecorder) RecordOutbox(result string) { c[result]++ }

func outboxRows(attempts int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "aggregate_type", "aggregate_id", "partition_key", "event_type", "payload", "status", "attempts", "occurred_at", "created_at", "updated_at"}).
		AddRow("evt-1", "order", "42", "order-42", "order.placed", `{"event_name":"order.placed"}`, "PENDING", attempts, now, now, now)
}

func TestNewOutboxWorkerValidates(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewOutboxRepository(db)

	_, err := NewOutboxWorker(nil, &stubPublisher{}, time.Second, 10, 3)
	assert.Error(t, err)
	_, err = NewOutboxWorker(repo, nil, time.Second, 10, 3)
	assert.Error(t, err)
	_, err = NewOutboxWorker(repo, &stubPublisher{}, 0, 10, 3)
	assert.Error(t, err)
	_, err = NewOutboxWorker(repo, &stubPublisher{}, time.Second, 10, 3)
	assert.NoError(t, err)
}

func TestOutboxWorker_ProcessBatchPublishes(t *testing.T) {
	db, mock := newMockDB(t)
	pub := &stubPublisher{}
	rec := countingRecorder{}
	w, err := NewOutboxWorker(NewOutboxRepository(db), pub, time.Second, 10, 3)
	require.NoError(t, err)
	w.SetRecorder(rec)

	mock.ExpectQuery("SELECT \\* FROM `outbox_events` WHERE status = \\?").WillReturnRows(outboxRows(0))
	mock.ExpectExec("UPDATE `outbox_events` SET `status`=\\?,`updated_at`=\\? WHERE id = \\? AND status = \\?").
		WithArgs("PROCESSING", sqlmock.AnyArg(), "evt-1", "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `outbox_events` SET `published_at`=\\?,`status`=\\?,`updated_at`=\\? WHERE id = \\?").
		WithArgs(sqlmock.AnyArg(), "PUBLISHED", sqlmock.AnyArg(), "evt-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := w.ProcessBatch(bg)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, pub.sent, 1)
	assert.Equal(t, "order-42", pub.sent[0].Key)
	assert.Equal(t, "order.placed", pub.sent[0].Type)
	assert.Equal(t, 1, rec["published"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxWorker_PublishFailureReturnsToPending(t *testing.T) {
	db, mock := newMockDB(t)
	rec := countingRecorder{}
	w, err := NewOutboxWorker(NewOutboxRepository(db), &stubPublisher{err: errors.New("broker down")}, time.Second, 10, 3)
	require.NoError(t, err)
	w.SetRecorder(rec)

	mock.ExpectQuery("SELECT \\* FROM `outbox_events` WHERE status = \\?").WillReturnRows(outboxRows(0))
	mock.ExpectExec("UPDATE `outbox_events` SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `outbox_events` SET `attempts`=\\?,`last_error`=\\?,`status`=\\?,`updated_at`=\\? WHERE id = \\?").
		WithArgs(1, "broker down", "PENDING", sqlmock.AnyArg(), "evt-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := w.ProcessBatch(bg)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 1, rec["failed"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxWorker_ParksEventAfterLastAttempt(t *testing.T) {
	db, mock := newMockDB(t)
	w, err := NewOutboxWorker(NewOutboxRepository(db), &stubPublisher{err: errors.New("broker down")}, time.Second, 10, 3)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT \\* FROM `outbox_events`").WillReturnRows(outboxRows(2))
	mock.ExpectExec("UPDATE `outbox_events` SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `outbox_events` SET `attempts`").
		WithArgs(3, "broker down", "FAILED", sqlmock.AnyArg(), "evt-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := w.ProcessBatch(bg)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_SaveEventRequiresTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOutboxRepository(db)

	o := newPendingOrder(t)
	o.AssignIdentity(42, []int64{100, 101})
	events := o.PullEvents()
	require.NotEmpty(t, events)

	assert.ErrorIs(t, repo.SaveEvent(bg, events[0]), errOutboxNeedsTx)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxWorker_SkipsEventClaimedElsewhere(t *testing.T) {
	db, mock := newMockDB(t)
	pub := &stubPublisher{}
	w, err := NewOutboxWorker(NewOutboxRepository(db), pub, time.Second, 10, 3)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT \\* FROM `outbox_events`").WillReturnRows(outboxRows(0))
	mock.ExpectExec("UPDATE `outbox_events` SET").WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := w.ProcessBatch(bg)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, pub.sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}
