// Package session stores per-session conversation history in SQLite.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/schema"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var ErrEmptySessionID = errors.New("session id is empty")

// Session is the history an agent runner reads before a turn and appends to after it.
type Session interface {
	ID() string
	GetItems(ctx context.Context, limit int) ([]*schema.Message, error)
	AddItems(ctx context.Context, items ...*schema.Message) error
	PopItem(ctx context.Context) (*schema.Message, error)
	ClearSession(ctx context.Context) error
}

type sessionRow struct {
	SessionID string `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (sessionRow) TableName() string { return "agent_sessions" }

type messageRow struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	SessionID   string `gorm:"index;not null"`
	MessageData string `gorm:"type:text;not null"`
	CreatedAt   time.Time
}

func (messageRow) TableName() string { return "agent_messages" }

type SQLiteSession struct {
	id string
	db *gorm.DB
}

// NewSQLiteSession opens (or creates) dbPath. ":memory:" gives a throwaway store.
func NewSQLiteSession(sessionID, dbPath string) (*SQLiteSession, error) {
	if sessionID == "" {
		return nil, ErrEmptySessionID
	}
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open session db %s: %w", dbPath, err)
	}
	if err := db.AutoMigrate(&sessionRow{}, &messageRow{}); err != nil {
		return nil, fmt.Errorf("migrate session db: %w", err)
	}
	return &SQLiteSession{id: sessionID, db: db}, nil
}

func (s *SQLiteSession) ID() string { return s.id }

// GetItems returns the session history oldest first. A positive limit keeps
// only the latest limit items.
func (s *SQLiteSession) GetItems(ctx context.Context, limit int) ([]*schema.Message, error) {
	var rows []messageRow
	q := s.db.WithContext(ctx).Where("session_id = ?", s.id)
	if limit > 0 {
		q = q.Order("id DESC").Limit(limit)
	} else {
		q = q.Order("id ASC")
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load session items: %w", err)
	}
	if limit > 0 {
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}

	items := make([]*schema.Message, 0, len(rows))
	for _, row := range rows {
		msg, err := decode(row.MessageData)
		if err != nil {
			return nil, err
		}
		items = append(items, msg)
	}
	return items, nil
}

func (s *SQLiteSession) AddItems(ctx context.Context, items ...*schema.Message) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]messageRow, 0, len(items))
	for _, item := range items {
		data, err := sonic.MarshalString(item)
		if err != nil {
			return fmt.Errorf("encode session item: %w", err)
		}
		rows = append(rows, messageRow{SessionID: s.id, MessageData: data})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&sessionRow{SessionID: s.id}).Error; err != nil {
			return fmt.Errorf("touch session: %w", err)
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert session items: %w", err)
		}
		return nil
	})
}

// PopItem removes and returns the newest item, or nil when the session is empty.
func (s *SQLiteSession) PopItem(ctx context.Context) (*schema.Message, error) {
	var row messageRow
	err := s.db.WithContext(ctx).Where("session_id = ?", s.id).Order("id DESC").Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pop session item: %w", err)
	}
	if err := s.db.WithContext(ctx).Delete(&messageRow{}, row.ID).Error; err != nil {
		return nil, fmt.Errorf("delete session item: %w", err)
	}
	return decode(row.MessageData)
}

func (s *SQLiteSession) ClearSession(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", s.id).Delete(&messageRow{}).Error; err != nil {
			return fmt.Errorf("clear session items: %w", err)
		}
		return tx.Where("session_id = ?", s.id).Delete(&sessionRow{}).Error
	})
}

func (s *SQLiteSession) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func decode(data string) (*schema.Message, error) {
	var msg schema.Message
	if err := sonic.UnmarshalString(data, &msg); err != nil {
		return nil, fmt.Errorf("decode session item: %w", err)
	}
	return &msg, nil
}
