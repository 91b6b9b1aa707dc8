package postgres

import (
	"context"

	"github.com/yoockh/jobbo/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// profileColumns are rewritten in full on every upsert; a profile write
// always carries the whole form.
var profileColumns = []string{"full_name", "phone", "location", "skills", "experience", "education", "updated_at"}

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	// Upsert writes p and refreshes it with the stored row.
	Upsert(ctx context.Context, p *models.Profile) error
}

type profileRepo struct {
	db *gorm.DB
}

func NewProfileRepo(db *gorm.DB) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	err := r.db.WithContext(ctx).
		Select(append([]string{"user_id"}, profileColumns...)).
		Where("user_id = ?", userID).
		Take(&p).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (r *profileRepo) Upsert(ctx context.Context, p *models.Profile) error {
	err := r.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}},
				DoUpdates: clause.AssignmentColumns(profileColumns),
			},
			clause.Returning{},
		).
		Create(p).Error
	return mapErr(err)
}
