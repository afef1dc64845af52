package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"syncnote/syncnote/config"
)

// Node is one tree path persisted as a row. The document stays an opaque JSON
// blob; only the parent collection is indexed, queries filter in code.
type Node struct {
	Path       string `gorm:"primaryKey"`
	Collection string `gorm:"index"`
	Doc        string
}

func (Node) TableName() string {
	return "tree_nodes"
}

// LocalStore keeps the tree in an embedded (sqlite) or relational (postgres)
// database, the equivalent of the original client's offline persistence mode.
type LocalStore struct {
	db *gorm.DB
}

// NewLocalStore wraps an already-open gorm handle. Used by SetupLocal and by
// tests that inject a mock connection.
func NewLocalStore(db *gorm.DB) *LocalStore {
	return &LocalStore{db: db}
}

func SetupLocal(cfg config.Config) (*LocalStore, error) {
	gormConfig := &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Warn),
		SkipDefaultTransaction: true,
	}

	var dialector gorm.Dialector
	switch cfg.StoreBackend {
	case "sqlite":
		dialector = sqlite.Open(cfg.StorePath)
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBName,
		)
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported local store backend %q", cfg.StoreBackend)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)

	if err := db.AutoMigrate(&Node{}); err != nil {
		return nil, fmt.Errorf("failed to migrate local store: %w", err)
	}

	return NewLocalStore(db), nil
}

func (l *LocalStore) Read(ctx context.Context, path string) (Snapshot, error) {
	var node Node
	err := l.db.WithContext(ctx).First(&node, "path = ?", path).Error
	if err == nil {
		return Snapshot{Key: lastSegment(path), Data: json.RawMessage(node.Doc)}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Snapshot{}, err
	}

	children, err := l.children(ctx, path)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Key: lastSegment(path), Children: children}, nil
}

func (l *LocalStore) Write(ctx context.Context, path string, doc interface{}) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	node := Node{Path: path, Collection: parentPath(path), Doc: string(data)}
	return l.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "path"}},
			DoUpdates: clause.AssignmentColumns([]string{"collection", "doc"}),
		}).
		Create(&node).Error
}

func (l *LocalStore) MultiWrite(ctx context.Context, updates map[string]interface{}) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for path, doc := range updates {
			if doc == nil {
				if err := tx.Delete(&Node{}, "path = ?", path).Error; err != nil {
					return err
				}
				continue
			}

			data, err := json.Marshal(doc)
			if err != nil {
				return err
			}
			node := Node{Path: path, Collection: parentPath(path), Doc: string(data)}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "path"}},
				DoUpdates: clause.AssignmentColumns([]string{"collection", "doc"}),
			}).Create(&node).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (l *LocalStore) QueryEqual(ctx context.Context, collection, field string, value interface{}) ([]Snapshot, error) {
	children, err := l.children(ctx, collection)
	if err != nil {
		return nil, err
	}

	var matches []Snapshot
	for _, child := range children {
		if fieldEquals(child.Data, field, value) {
			matches = append(matches, child)
		}
	}
	return matches, nil
}

func (l *LocalStore) PushID(ctx context.Context, collection string) (string, error) {
	return uuid.NewString(), nil
}

func (l *LocalStore) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (l *LocalStore) children(ctx context.Context, collection string) ([]Snapshot, error) {
	var nodes []Node
	if err := l.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("path").
		Find(&nodes).Error; err != nil {
		return nil, err
	}

	children := make([]Snapshot, 0, len(nodes))
	for _, node := range nodes {
		children = append(children, Snapshot{
			Key:  lastSegment(node.Path),
			Data: json.RawMessage(node.Doc),
		})
	}
	return children, nil
}

func parentPath(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[:i]
	}
	return ""
}
