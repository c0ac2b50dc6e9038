package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/colmado-pos/internal/domain/entity"
	"github.com/sangkips/colmado-pos/internal/domain/repository"
	"github.com/sangkips/colmado-pos/pkg/apperror"
	"github.com/sangkips/colmado-pos/pkg/pagination"
	"github.com/sangkips/colmado-pos/pkg/utils"
)

// UserService handles management of register operators
type UserService struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository, roleRepo repository.RoleRepository) *UserService {
	return &UserService{userRepo: userRepo, roleRepo: roleRepo}
}

// CreateUserInput represents the input for creating a user
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Roles    []string
}

// CreateUser adds an operator. Without roles the user is a cashier.
func (s *UserService) CreateUser(ctx context.Context, input *CreateUserInput) (*entity.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("El correo ya está registrado")
	}
	if len(input.Password) < 8 {
		return nil, apperror.NewFieldError("password", "La contraseña debe tener al menos 8 caracteres")
	}

	roleNames := input.Roles
	if len(roleNames) == 0 {
		roleNames = []string{entity.RoleCashier}
	}
	roles, err := s.resolveRoles(ctx, roleNames)
	if err != nil {
		return nil, err
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user := &entity.User{
		Name:     strings.TrimSpace(input.Name),
		Email:    email,
		Password: hashed,
		Active:   true,
		Roles:    roles,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, user.ID)
}

// ListUsers returns a paginated list of users with their roles
func (s *UserService) ListUsers(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.User], error) {
	params.Validate()
	users, total, err := s.userRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(users, params, total), nil
}

// GetUser returns a user by ID with roles and permissions
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("Usuario")
	}
	return user, nil
}

// UpdateUserInput represents the input for updating a user; nil fields are kept
type UpdateUserInput struct {
	UserID uuid.UUID
	Name   *string
	Active *bool
	Roles  []string
}

// UpdateUser changes name, active flag or roles of a user
func (s *UserService) UpdateUser(ctx context.Context, actorID uuid.UUID, input *UpdateUserInput) (*entity.User, error) {
	user, err := s.GetUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if input.Active != nil && !*input.Active && user.ID == actorID {
		return nil, apperror.NewBadRequestError("No puede desactivar su propio usuario")
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Active != nil {
		user.Active = *input.Active
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if input.Roles != nil {
		roles, err := s.resolveRoles(ctx, input.Roles)
		if err != nil {
			return nil, err
		}
		if err := s.userRepo.ReplaceRoles(ctx, user, roles); err != nil {
			return nil, err
		}
	}
	return s.userRepo.GetByID(ctx, user.ID)
}

// ListRoles returns all available roles
func (s *UserService) ListRoles(ctx context.Context) ([]entity.Role, error) {
	return s.roleRepo.List(ctx)
}

func (s *UserService) resolveRoles(ctx context.Context, names []string) ([]entity.Role, error) {
	roles := make([]entity.Role, 0, len(names))
	for _, name := range names {
		role, err := s.roleRepo.GetByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if role == nil {
			return nil, apperror.NewFieldError("roles", "Rol desconocido: "+name)
		}
		roles = append(roles, *role)
	}
	return roles, nil
}
