// internal/store/gorm_store.go
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/casaprime/realty-backend/internal/database"
	"github.com/casaprime/realty-backend/internal/models"
	"github.com/casaprime/realty-backend/internal/utils"
)

type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a Store backed by gorm. It works on both the
// postgres and sqlite dialects.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) WithTx(ctx context.Context, fn func(Store) error) error {
	return database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

// translate maps gorm errors onto the store's sentinels.
func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// Properties

func (s *gormStore) CreateProperty(ctx context.Context, property *models.Property) error {
	return translate(s.db.WithContext(ctx).Create(property).Error, "create property")
}

func (s *gormStore) GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	var property models.Property
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&property).Error; err != nil {
		return nil, translate(err, "get property")
	}
	return &property, nil
}

func (s *gormStore) ListProperties(ctx context.Context, query PropertyQuery) ([]models.Property, error) {
	var properties []models.Property
	err := s.applyPropertyQuery(s.db.WithContext(ctx).Model(&models.Property{}), query).
		Order("created_at DESC").
		Order("id").
		Find(&properties).Error
	if err != nil {
		return nil, translate(err, "list properties")
	}
	return properties, nil
}

func (s *gormStore) CountProperties(ctx context.Context, query PropertyQuery) (int64, error) {
	var total int64
	err := s.applyPropertyQuery(s.db.WithContext(ctx).Model(&models.Property{}), query).Count(&total).Error
	if err != nil {
		return 0, translate(err, "count properties")
	}
	return total, nil
}

func (s *gormStore) applyPropertyQuery(db *gorm.DB, query PropertyQuery) *gorm.DB {
	if len(query.RealtorIDs) > 0 {
		db = db.Where("realtor_id IN ?", query.RealtorIDs)
	}
	if query.Status != nil {
		db = db.Where("status = ?", *query.Status)
	}
	if query.CreatedSince != nil {
		db = db.Where("created_at >= ?", query.CreatedSince.UTC())
	}
	if query.ActiveRealtorsOnly {
		active := s.db.Session(&gorm.Session{NewDB: true}).
			Model(&models.User{}).
			Select("id").
			Where("type = ? AND lifecycle = ?", models.UserTypeRealtor, models.LifecycleActive)
		db = db.Where("realtor_id IN (?)", active)
	}
	return db
}

func (s *gormStore) UpdatePropertyFields(ctx context.Context, id uuid.UUID, version int64, fields map[string]interface{}) error {
	updates := make(map[string]interface{}, len(fields)+2)
	for column, value := range fields {
		updates[column] = value
	}
	updates["version"] = gorm.Expr("version + 1")
	updates["updated_at"] = time.Now().UTC()

	result := s.db.WithContext(ctx).
		Session(&gorm.Session{SkipHooks: true}).
		Model(&models.Property{}).
		Where("id = ? AND version = ?", id, version).
		Updates(updates)
	if result.Error != nil {
		return translate(result.Error, "update property")
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (s *gormStore) SoftDeleteProperty(ctx context.Context, id uuid.UUID, version int64) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND version = ?", id, version).
		Delete(&models.Property{})
	if result.Error != nil {
		return translate(result.Error, "delete property")
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var live int64
	if err := s.db.WithContext(ctx).Model(&models.Property{}).Where("id = ?", id).Count(&live).Error; err != nil {
		return translate(err, "delete property")
	}
	if live == 0 {
		return ErrNotFound
	}
	return ErrVersionConflict
}

// Status history

func (s *gormStore) AppendStatusHistory(ctx context.Context, entry *models.StatusHistoryEntry) error {
	return translate(s.db.WithContext(ctx).Create(entry).Error, "append status history")
}

func (s *gormStore) ListStatusHistory(ctx context.Context, propertyID uuid.UUID) ([]models.StatusHistoryEntry, error) {
	var entries []models.StatusHistoryEntry
	err := s.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("sequence ASC").
		Find(&entries).Error
	if err != nil {
		return nil, translate(err, "list status history")
	}
	return entries, nil
}

func (s *gormStore) LastStatusHistory(ctx context.Context, propertyID uuid.UUID) (*models.StatusHistoryEntry, error) {
	var entry models.StatusHistoryEntry
	err := s.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("sequence DESC").
		First(&entry).Error
	if err != nil {
		return nil, translate(err, "get last status history")
	}
	return &entry, nil
}

// Realtors

func (s *gormStore) CreateRealtor(ctx context.Context, realtor *models.User) error {
	return translate(s.db.WithContext(ctx).Create(realtor).Error, "create realtor")
}

func (s *gormStore) GetRealtor(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var realtor models.User
	err := s.db.WithContext(ctx).
		Where("id = ? AND type = ?", id, models.UserTypeRealtor).
		First(&realtor).Error
	if err != nil {
		return nil, translate(err, "get realtor")
	}
	return &realtor, nil
}

func (s *gormStore) LockRealtor(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var realtor models.User
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND type = ?", id, models.UserTypeRealtor).
		First(&realtor).Error
	if err != nil {
		return nil, translate(err, "lock realtor")
	}
	return &realtor, nil
}

func (s *gormStore) ListRealtors(ctx context.Context, query RealtorQuery) ([]models.User, int64, error) {
	db := s.db.WithContext(ctx).Model(&models.User{}).Where("type = ?", models.UserTypeRealtor)

	if query.Lifecycle != nil {
		db = db.Where("lifecycle = ?", *query.Lifecycle)
	}
	if query.Search != "" {
		searchTerm := "%" + strings.ToLower(query.Search) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?", searchTerm, searchTerm, searchTerm)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count realtors")
	}

	if query.Limit > 0 {
		allowedSortFields := []string{"created_at", "updated_at", "name", "email", "lifecycle"}
		db = utils.ApplySort(db, query.PaginationParams, allowedSortFields)
		db = utils.ApplyPagination(db, query.PaginationParams)
	} else {
		db = db.Order("name ASC")
	}

	var realtors []models.User
	if err := db.Find(&realtors).Error; err != nil {
		return nil, 0, translate(err, "list realtors")
	}
	return realtors, total, nil
}

func (s *gormStore) SaveRealtor(ctx context.Context, realtor *models.User) error {
	return translate(s.db.WithContext(ctx).Save(realtor).Error, "save realtor")
}

func (s *gormStore) DeleteRealtor(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Unscoped().
		Where("id = ? AND type = ?", id, models.UserTypeRealtor).
		Delete(&models.User{})
	if result.Error != nil {
		return translate(result.Error, "delete realtor")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) EmailTaken(ctx context.Context, email string, exclude uuid.UUID) (bool, error) {
	return s.taken(ctx, "LOWER(email) = ?", strings.ToLower(email), exclude)
}

func (s *gormStore) PhoneTaken(ctx context.Context, phone string, exclude uuid.UUID) (bool, error) {
	return s.taken(ctx, "phone = ?", phone, exclude)
}

func (s *gormStore) taken(ctx context.Context, cond string, value string, exclude uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Unscoped().
		Model(&models.User{}).
		Where(cond, value).
		Where("id <> ?", exclude).
		Count(&count).Error
	if err != nil {
		return false, translate(err, "check uniqueness")
	}
	return count > 0, nil
}

// Counters

func (s *gormStore) AdjustRealtorStats(ctx context.Context, realtorID uuid.UUID, delta models.StatusCounts) error {
	now := time.Now().UTC()
	row := models.RealtorStats{
		RealtorID:   realtorID,
		Available:   delta.Available,
		Negotiating: delta.Negotiating,
		Sold:        delta.Sold,
		UpdatedAt:   now,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "realtor_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"available":   gorm.Expr("realtor_stats.available + ?", delta.Available),
			"negotiating": gorm.Expr("realtor_stats.negotiating + ?", delta.Negotiating),
			"sold":        gorm.Expr("realtor_stats.sold + ?", delta.Sold),
			"updated_at":  now,
		}),
	}).Create(&row).Error
	return translate(err, "adjust realtor stats")
}

func (s *gormStore) GetRealtorStats(ctx context.Context, realtorID uuid.UUID) (models.RealtorStats, error) {
	var row models.RealtorStats
	err := s.db.WithContext(ctx).Where("realtor_id = ?", realtorID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RealtorStats{RealtorID: realtorID}, nil
	}
	if err != nil {
		return models.RealtorStats{}, translate(err, "get realtor stats")
	}
	return row, nil
}

func (s *gormStore) ListRealtorStats(ctx context.Context, realtorIDs []uuid.UUID) (map[uuid.UUID]models.RealtorStats, error) {
	result := make(map[uuid.UUID]models.RealtorStats, len(realtorIDs))
	if len(realtorIDs) == 0 {
		return result, nil
	}

	var rows []models.RealtorStats
	if err := s.db.WithContext(ctx).Where("realtor_id IN ?", realtorIDs).Find(&rows).Error; err != nil {
		return nil, translate(err, "list realtor stats")
	}
	for _, row := range rows {
		result[row.RealtorID] = row
	}
	return result, nil
}

func (s *gormStore) ReplaceRealtorStats(ctx context.Context, rows []models.RealtorStats) error {
	db := s.db.WithContext(ctx)
	if err := db.Where("1 = 1").Delete(&models.RealtorStats{}).Error; err != nil {
		return translate(err, "clear realtor stats")
	}
	if len(rows) == 0 {
		return nil
	}
	return translate(db.CreateInBatches(rows, 100).Error, "insert realtor stats")
}

func (s *gormStore) DeleteRealtorStats(ctx context.Context, realtorID uuid.UUID) error {
	err := s.db.WithContext(ctx).Where("realtor_id = ?", realtorID).Delete(&models.RealtorStats{}).Error
	return translate(err, "delete realtor stats")
}

// Audit

func (s *gormStore) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	return translate(s.db.WithContext(ctx).Create(entry).Error, "create audit log")
}
