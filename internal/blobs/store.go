// Package blobs is the temporary upload store. Files posted from the
// wizard are parked here under an integer handle until the surrounding
// form commits, then consumed exactly once.
package blobs

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aipress24/kyc-engine/internal/database"
	"github.com/aipress24/kyc-engine/internal/models"
)

// ErrNotFound is returned when a handle does not exist or was already
// consumed.
var ErrNotFound = errors.New("blob not found")

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithTx returns a view of the store bound to the caller's transaction,
// so pops commit and roll back with the surrounding submission.
func (s *Store) WithTx(tx *gorm.DB) *Store {
	return &Store{db: tx}
}

// Store parks an upload and returns its handle. Empty content or an
// empty filename yields handle 0, the null handle, without touching the
// database.
func (s *Store) Store(filename string, content []byte) (uint, error) {
	if len(content) == 0 || filename == "" {
		return 0, nil
	}
	blob := models.TmpBlob{
		UUID:     uuid.NewString(),
		Filename: filename,
		Content:  content,
	}
	if err := s.db.Create(&blob).Error; err != nil {
		return 0, fmt.Errorf("store blob %q: %w", filename, err)
	}
	return blob.ID, nil
}

// Pop consumes a blob: it returns the content and removes the row in one
// transaction, so two racing commits cannot both claim it. Handle 0
// resolves to nil without error.
func (s *Store) Pop(id uint) (*models.TmpBlob, error) {
	if id == 0 {
		return nil, nil
	}
	var blob models.TmpBlob
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).First(&blob, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		res := tx.Delete(&models.TmpBlob{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &blob, nil
}

// Peek reads a blob without consuming it.
func (s *Store) Peek(id uint) (*models.TmpBlob, error) {
	if id == 0 {
		return nil, nil
	}
	var blob models.TmpBlob
	if err := s.db.First(&blob, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &blob, nil
}

// Forget drops a blob if it still exists. Dropping a consumed or unknown
// handle is not an error.
func (s *Store) Forget(id uint) error {
	if id == 0 {
		return nil
	}
	return s.db.Delete(&models.TmpBlob{}, id).Error
}

// Cleanup removes blobs older than the retention window and returns the
// number of rows dropped.
func (s *Store) Cleanup(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	res := s.db.Where("created_at < ?", cutoff).Delete(&models.TmpBlob{})
	return res.RowsAffected, res.Error
}

// StartCleanup runs Cleanup on a fixed interval until the process exits.
func (s *Store) StartCleanup(interval, retention time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			dropped, err := s.Cleanup(retention)
			if err != nil {
				slog.Error("blob cleanup failed", "error", err.Error())
				continue
			}
			if dropped > 0 {
				slog.Info("blob cleanup", "dropped", dropped)
			}
		}
	}()
}
