package session

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sessionRow is the single persisted token. The table never holds more
// than the row with ID 1.
type sessionRow struct {
	ID        uint `gorm:"primaryKey"`
	Token     string
	CreatedAt time.Time
}

func (sessionRow) TableName() string { return "sessions" }

const singletonID = 1

// SQLStore is a gorm backed token store.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore wraps db, creating the sessions table if needed.
func NewSQLStore(db *gorm.DB) (*SQLStore, error) {
	if err := db.AutoMigrate(&sessionRow{}); err != nil {
		return nil, fmt.Errorf("migrate sessions: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// OpenSQLStore opens (or creates) a SQLite database at path.
func OpenSQLStore(path string) (*SQLStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	return NewSQLStore(db)
}

func (s *SQLStore) Info() (*TokenInfo, error) {
	row := &sessionRow{}
	tx := s.db.Where("id = ?", singletonID).Limit(1).Find(row)
	if tx.Error != nil {
		return nil, fmt.Errorf("read session: %w", tx.Error)
	}
	if tx.RowsAffected == 0 || row.Token == "" {
		return nil, nil
	}
	return &TokenInfo{Token: row.Token, Source: SourceSQLite, CreatedAt: row.CreatedAt}, nil
}

func (s *SQLStore) Token() (string, bool, error) {
	ti, err := s.Info()
	if err != nil || ti == nil {
		return "", false, err
	}
	return ti.Token, true, nil
}

func (s *SQLStore) SetToken(token string) error {
	token, err := normalize(token)
	if err != nil {
		return err
	}
	row := &sessionRow{}
	tx := s.db.Where(sessionRow{ID: singletonID}).
		Assign(sessionRow{Token: token, CreatedAt: time.Now().UTC()}).
		FirstOrCreate(row)
	if tx.Error != nil {
		return fmt.Errorf("write session: %w", tx.Error)
	}
	return nil
}

func (s *SQLStore) Clear() error {
	if tx := s.db.Delete(&sessionRow{}, singletonID); tx.Error != nil {
		return fmt.Errorf("delete session: %w", tx.Error)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
