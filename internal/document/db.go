package document

import (
	"context"
	"errors"

	"github.com/Quyenld9699/realtime-multi-user-edit/internal/common/config"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ErrInvalidDatabaseType is returned for an unsupported database type
var ErrInvalidDatabaseType = errors.New("invalid database type")

// DBStore implements Store using a database
type DBStore struct {
	logger *zap.Logger
	db     *gorm.DB
}

var _ Store = (*DBStore)(nil)

// NewDBStore creates a new database-backed document store
func NewDBStore(logger *zap.Logger, cfg *config.DatabaseConfig) (*DBStore, error) {
	logger = logger.Named("document.store.db")

	var dialector gorm.Dialector
	switch cfg.Type {
	case "postgres":
		dialector = postgres.Open(cfg.GetDSN())
	case "mysql":
		dialector = mysql.Open(cfg.GetDSN())
	case "sqlite":
		dialector = sqlite.Open(cfg.GetDSN())
	default:
		return nil, ErrInvalidDatabaseType
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto migrate the schema
	if err := db.AutoMigrate(&Model{}); err != nil {
		return nil, err
	}

	return &DBStore{
		logger: logger,
		db:     db,
	}, nil
}

// Create implements Store.Create
func (s *DBStore) Create(ctx context.Context, doc *Document) error {
	model, err := FromDocument(doc)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(model).Error
}

// Get implements Store.Get
func (s *DBStore) Get(ctx context.Context, id string) (*Document, error) {
	var model Model
	result := s.db.WithContext(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return model.ToDocument()
}

// GetContent implements Store.GetContent
func (s *DBStore) GetContent(ctx context.Context, id string) (string, error) {
	var model Model
	result := s.db.WithContext(ctx).Select("content").Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", result.Error
	}
	return model.Content, nil
}

// SetContent implements Store.SetContent
func (s *DBStore) SetContent(ctx context.Context, id, content string) error {
	result := s.db.WithContext(ctx).Model(&Model{}).Where("id = ?", id).Update("content", content)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CheckAccess implements Store.CheckAccess
func (s *DBStore) CheckAccess(ctx context.Context, id, userID string) (bool, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return doc.HasAccess(userID), nil
}

// Delete implements Store.Delete
func (s *DBStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Model{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Close implements Store.Close
func (s *DBStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
