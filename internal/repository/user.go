package repository

import (
	"context"
	"errors"

	"conduit/internal/cache"
	"conduit/internal/models"

	"gorm.io/gorm"
)

const takenMessage = "has already been taken"

// UserUpdate lists the user columns that may change. Nil fields are left alone.
type UserUpdate struct {
	Username *string
	Email    *string
	Password *string
	Bio      *string
	Image    *string
}

func (u UserUpdate) columns() map[string]any {
	cols := map[string]any{}
	set := func(name string, v *string) {
		if v != nil {
			cols[name] = *v
		}
	}
	set("username", u.Username)
	set("email", u.Email)
	set("password", u.Password)
	set("bio", u.Bio)
	set("image", u.Image)
	return cols
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id uint, changes UserUpdate) (*models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// GetByID is served from the cache when possible. The cached copy has no
// password hash.
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	key := cache.UserKey(id)

	err := cache.Aside(ctx, "user", key, &user, cache.UserTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail returns nil, nil when no user has the email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// GetByUsername returns nil, nil when no user has the username.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := readDB(r.db).WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return userConflict(err)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, id uint, changes UserUpdate) (*models.User, error) {
	cols := changes.columns()
	db := r.db.WithContext(ctx)

	if len(cols) > 0 {
		res := db.Model(&models.User{}).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			if isUniqueConstraintError(res.Error) {
				return nil, userConflict(res.Error)
			}
			return nil, models.NewInternalError(res.Error)
		}
		cache.InvalidateUser(ctx, id)
	}

	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func userConflict(err error) *models.AppError {
	col := violatedColumn(err, "email", "username")
	if col == "" {
		return models.NewConflictError(map[string]string{"email or username": takenMessage})
	}
	return models.NewConflictError(map[string]string{col: takenMessage})
}
