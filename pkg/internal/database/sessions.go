package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/peerlinehq/duocall/pkg/internal/models"
)

// SessionStore persists call sessions through the shared gorm source.
type SessionStore struct{}

func (SessionStore) Create(ctx context.Context, session *models.CallSession) error {
	if len(session.ID) == 0 {
		session.ID = uuid.NewString()
	}
	return C.WithContext(ctx).Create(session).Error
}

func (SessionStore) Get(ctx context.Context, id string) (models.CallSession, error) {
	var session models.CallSession
	if err := C.WithContext(ctx).
		Where("id = ?", id).
		First(&session).Error; err != nil {
		return session, err
	}
	return session, nil
}

// Delete is a no-op when the record is already gone, so concurrent
// reconciliation paths can race on it safely.
func (SessionStore) Delete(ctx context.Context, id string) error {
	return C.WithContext(ctx).
		Delete(&models.CallSession{}, "id = ?", id).Error
}

func (SessionStore) List(ctx context.Context) ([]models.CallSession, error) {
	var sessions []models.CallSession
	if err := C.WithContext(ctx).
		Order("created_at DESC").
		Find(&sessions).Error; err != nil {
		return sessions, err
	}
	return sessions, nil
}
