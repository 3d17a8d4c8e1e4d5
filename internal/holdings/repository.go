package holdings

import (
	"context"
	"errors"

	"folio-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Filter narrows a holdings listing. Tags matches any (a holding qualifies
// when it carries at least one of the requested tags).
type Filter struct {
	Type string
	Tags []string
}

// Sort orders a holdings listing by one whitelisted field.
type Sort struct {
	Column string
	Desc   bool
}

// DefaultSort is newest-first by creation time.
var DefaultSort = Sort{Column: "created_at", Desc: true}

// Repository is the durable store of holding records.
type Repository interface {
	Find(ctx context.Context, filter Filter, sort Sort) ([]models.Holding, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Holding, error)
	Create(ctx context.Context, h *models.Holding) error
	UpdateByID(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.Holding, error)
	DeleteByID(ctx context.Context, id uuid.UUID) (*models.Holding, error)
}

// GormRepository is the GORM-backed Repository.
type GormRepository struct {
	DB *gorm.DB
}

func (r *GormRepository) Find(ctx context.Context, filter Filter, sort Sort) ([]models.Holding, error) {
	q := r.DB.WithContext(ctx).Model(&models.Holding{})
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	column := sort.Column
	if column == "" {
		column = DefaultSort.Column
	}
	dir := "ASC"
	if sort.Desc {
		dir = "DESC"
	}

	var out []models.Holding
	if err := q.Order(column + " " + dir).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(filter.Tags) == 0 {
		return out, nil
	}

	// Tag match-any is applied here rather than in SQL: the tags column is a
	// JSON array and containment queries are not portable between the
	// postgres and sqlite drivers.
	filtered := out[:0]
	for _, h := range out {
		if hasAnyTag(h.TagList(), filter.Tags) {
			filtered = append(filtered, h)
		}
	}
	return filtered, nil
}

func hasAnyTag(have, want []string) bool {
	for _, w := range want {
		for _, t := range have {
			if t == w {
				return true
			}
		}
	}
	return false
}

func (r *GormRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Holding, error) {
	var h models.Holding
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&h).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &h, nil
}

func (r *GormRepository) Create(ctx context.Context, h *models.Holding) error {
	return r.DB.WithContext(ctx).Create(h).Error
}

func (r *GormRepository) UpdateByID(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.Holding, error) {
	res := r.DB.WithContext(ctx).Model(&models.Holding{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

func (r *GormRepository) DeleteByID(ctx context.Context, id uuid.UUID) (*models.Holding, error) {
	h, err := r.FindByID(ctx, id)
	if err != nil || h == nil {
		return nil, err
	}
	if err := r.DB.WithContext(ctx).Delete(&models.Holding{}, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return h, nil
}
