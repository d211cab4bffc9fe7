package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// GormStore is a GORM implementation of Store
type GormStore struct {
	db        *gorm.DB
	txOptions *sql.TxOptions
	lockReads bool
}

// StoreOption customises a GormStore.
type StoreOption func(*GormStore)

// WithIsolation sets the isolation level transactions begin with.
func WithIsolation(level sql.IsolationLevel) StoreOption {
	return func(s *GormStore) {
		if level == sql.LevelDefault {
			s.txOptions = nil
			return
		}
		s.txOptions = &sql.TxOptions{Isolation: level}
	}
}

// WithRowLocking makes reads inside a transaction take row locks
// (SELECT ... FOR UPDATE). sqlite does not support the clause.
func WithRowLocking(enabled bool) StoreOption {
	return func(s *GormStore) {
		s.lockReads = enabled
	}
}

// NewStore creates a new Store
func NewStore(db *gorm.DB, opts ...StoreOption) *GormStore {
	s := &GormStore{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tasks returns a task repository outside any transaction
func (s *GormStore) Tasks() TaskRepository {
	return &GormTaskRepository{db: s.db}
}

// Users returns a user repository outside any transaction
func (s *GormStore) Users() UserRepository {
	return &GormUserRepository{db: s.db}
}

// Begin opens a transaction
func (s *GormStore) Begin(ctx context.Context) (Tx, error) {
	var tx *gorm.DB
	if s.txOptions != nil {
		tx = s.db.WithContext(ctx).Begin(s.txOptions)
	} else {
		tx = s.db.WithContext(ctx).Begin()
	}
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &gormTx{db: tx, lockReads: s.lockReads}, nil
}

type gormTx struct {
	db        *gorm.DB
	lockReads bool
}

func (t *gormTx) Tasks() TaskRepository {
	return &GormTaskRepository{db: t.db, lockReads: t.lockReads}
}

func (t *gormTx) Users() UserRepository {
	return &GormUserRepository{db: t.db, lockReads: t.lockReads}
}

func (t *gormTx) Commit() error {
	return t.db.Commit().Error
}

func (t *gormTx) Rollback() error {
	return t.db.Rollback().Error
}
