package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/kube-rca/incident-bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryRecent(t *testing.T) {
	file := &fakeRecordStore{alerts: []model.AlertRecord{{ID: uuid.New()}}}
	svc := NewHistoryService(file)

	records, source, err := svc.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, HistorySourceFile, source)
	assert.Len(t, records, 1)

	db := &fakeMirror{alerts: []model.AlertRecord{{ID: uuid.New()}, {ID: uuid.New()}}}
	svc.SetDB(db)
	records, source, err = svc.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, HistorySourceDB, source)
	assert.Len(t, records, 2)

	db.err = errors.New("connection refused")
	records, source, err = svc.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, HistorySourceFile, source)
	assert.Len(t, records, 1)
}
