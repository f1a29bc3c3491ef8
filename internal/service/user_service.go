package service

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"conduit/internal/models"
	"conduit/internal/repository"
	"conduit/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

const takenMessage = "has already been taken"

type UserService struct {
	userRepo   repository.UserRepository
	bcryptCost int
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// UpdateUserInput carries the editable user fields. Nil means unchanged.
type UpdateUserInput struct {
	UserID   uint
	Username *string
	Email    *string
	Password *string
	Bio      *string
	Image    *string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo, bcryptCost: bcrypt.DefaultCost}
}

// WithBcryptCost returns s using cost for new password hashes.
func (s *UserService) WithBcryptCost(cost int) *UserService {
	s.bcryptCost = cost
	return s
}

// Register creates a user. Taken fields are reported together; the unique
// indexes still decide when two registrations race.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)

	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if err := s.checkAvailable(ctx, 0, &in.Username, &in.Email); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hashed),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login checks credentials. Unknown email and wrong password fail the same way.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return user, nil
}

func (s *UserService) CurrentUser(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *UserService) UpdateUser(ctx context.Context, in UpdateUserInput) (*models.User, error) {
	const maxBioLen = 500

	changes := repository.UserUpdate{Bio: in.Bio, Image: in.Image}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if err := validation.ValidateUsername(username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		changes.Username = &username
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if err := validation.ValidateEmail(email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		changes.Email = &email
	}
	if in.Bio != nil && utf8.RuneCountInString(*in.Bio) > maxBioLen {
		return nil, models.NewValidationError("Bio too long (max 500 characters)")
	}
	if in.Password != nil {
		if err := validation.ValidatePassword(*in.Password); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*in.Password), s.bcryptCost)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		password := string(hashed)
		changes.Password = &password
	}

	if err := s.checkAvailable(ctx, in.UserID, changes.Username, changes.Email); err != nil {
		return nil, err
	}

	return s.userRepo.Update(ctx, in.UserID, changes)
}

// checkAvailable reports every requested username or email already held by
// a user other than selfID.
func (s *UserService) checkAvailable(ctx context.Context, selfID uint, username, email *string) error {
	fields := map[string]string{}

	if email != nil {
		existing, err := s.userRepo.GetByEmail(ctx, *email)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != selfID {
			fields["email"] = takenMessage
		}
	}
	if username != nil {
		existing, err := s.userRepo.GetByUsername(ctx, *username)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != selfID {
			fields["username"] = takenMessage
		}
	}

	if len(fields) > 0 {
		return models.NewConflictError(fields)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
