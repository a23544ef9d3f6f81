// Package indexer persists executed transactions and their events in a SQL
// database so they can be served over RPC after the fact.
package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"nftfi/core"
)

var (
	ErrDSNRequired = errors.New("indexer: dsn must be configured")
	ErrNotFound    = errors.New("indexer: transaction not found")
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

// TxRecord is one executed transaction.
type TxRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Hash      string `gorm:"uniqueIndex;not null"`
	Height    uint64 `gorm:"index"`
	Time      uint64
	Sender    string `gorm:"index"`
	Contract  string `gorm:"index"`
	Action    string
	Success   bool
	Error     string
	Data      []byte
	CreatedAt time.Time
}

// EventRecord is one event emitted by a transaction. Attributes hold the
// JSON object of the event attributes.
type EventRecord struct {
	ID         uint   `gorm:"primaryKey"`
	TxHash     string `gorm:"index;not null"`
	Position   int
	Type       string `gorm:"index"`
	Contract   string `gorm:"index"`
	Attributes string
}

// Attrs decodes the stored attributes.
func (e EventRecord) Attrs() (map[string]string, error) {
	out := map[string]string{}
	if e.Attributes == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(e.Attributes), &out); err != nil {
		return nil, fmt.Errorf("decode attributes of event %d: %w", e.ID, err)
	}
	return out, nil
}

type Store struct {
	db *gorm.DB
}

// Open connects to a sqlite DSN and migrates the schema.
func Open(dsn string) (*Store, error) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return nil, ErrDSNRequired
	}
	db, err := gorm.Open(sqlite.Open(trimmed), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open indexer database: %w", err)
	}
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate indexer: %w", err)
	}
	return &Store{db: db}, nil
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&TxRecord{}, &EventRecord{})
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Record stores res and its events in one SQL transaction.
func (s *Store) Record(ctx context.Context, res *core.TxResult) error {
	if s == nil {
		return fmt.Errorf("indexer not configured")
	}
	if res == nil {
		return fmt.Errorf("indexer: nil result")
	}
	tx := TxRecord{
		Hash:     res.Hash,
		Height:   res.Height,
		Time:     res.Time,
		Sender:   res.Sender,
		Contract: res.Contract,
		Action:   res.Action,
		Success:  res.Success(),
		Error:    res.Error,
		Data:     res.Data,
	}
	records := make([]EventRecord, 0, len(res.Events))
	for i, ev := range res.Events {
		attrs, err := json.Marshal(ev.Attributes)
		if err != nil {
			return fmt.Errorf("encode event %d: %w", i, err)
		}
		records = append(records, EventRecord{
			TxHash:     res.Hash,
			Position:   i,
			Type:       ev.Type,
			Contract:   ev.Attributes["_contract_address"],
			Attributes: string(attrs),
		})
	}
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		if err := db.Create(&tx).Error; err != nil {
			return fmt.Errorf("insert tx %s: %w", res.Hash, err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := db.Create(&records).Error; err != nil {
			return fmt.Errorf("insert events of %s: %w", res.Hash, err)
		}
		return nil
	})
}

// TxByHash returns a transaction and its events in emission order.
func (s *Store) TxByHash(ctx context.Context, hash string) (*TxRecord, []EventRecord, error) {
	var tx TxRecord
	err := s.db.WithContext(ctx).First(&tx, "hash = ?", strings.TrimSpace(hash)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("query tx: %w", err)
	}
	var evs []EventRecord
	if err := s.db.WithContext(ctx).Where("tx_hash = ?", tx.Hash).Order("position asc").Find(&evs).Error; err != nil {
		return nil, nil, fmt.Errorf("query events: %w", err)
	}
	return &tx, evs, nil
}

// EventsByContract returns the latest events emitted by addr, newest first.
func (s *Store) EventsByContract(ctx context.Context, addr string, limit int) ([]EventRecord, error) {
	if limit <= 0 {
		limit = defaultEventLimit
	}
	if limit > maxEventLimit {
		limit = maxEventLimit
	}
	var evs []EventRecord
	err := s.db.WithContext(ctx).
		Where("contract = ?", strings.TrimSpace(addr)).
		Order("id desc").
		Limit(limit).
		Find(&evs).Error
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	return evs, nil
}

// TxsBySender returns the latest transactions of sender, newest first.
func (s *Store) TxsBySender(ctx context.Context, sender string, limit int) ([]TxRecord, error) {
	if limit <= 0 {
		limit = defaultEventLimit
	}
	if limit > maxEventLimit {
		limit = maxEventLimit
	}
	var txs []TxRecord
	err := s.db.WithContext(ctx).Where("sender = ?", sender).Order("id desc").Limit(limit).Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("query txs: %w", err)
	}
	return txs, nil
}
