package postgres

import (
	"context"
	"strings"

	"github.com/yoockh/jobbo/internal/models"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByGoogleSubject(ctx context.Context, sub string) (*models.User, error)
	Save(ctx context.Context, u *models.User) error
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	return mapErr(r.db.WithContext(ctx).Create(u).Error)
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.take(ctx, "id = ?", id)
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.take(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (r *userRepo) GetByGoogleSubject(ctx context.Context, sub string) (*models.User, error) {
	return r.take(ctx, "google_subject = ?", sub)
}

func (r *userRepo) Save(ctx context.Context, u *models.User) error {
	return mapErr(r.db.WithContext(ctx).Save(u).Error)
}

func (r *userRepo) take(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where(query, arg).Take(&u).Error; err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}
