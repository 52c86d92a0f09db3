package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/entity"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/repository"
	infraRepo "github.com/miracle7662/RestaurantNew-sub004/internal/infrastructure/repository"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/apperror"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/pagination"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/utils"
)

// UserService handles staff account management
type UserService struct {
	tx             repository.Transactor
	userRepo       repository.UserRepository
	roleRepo       repository.RoleRepository
	permissionRepo repository.PermissionRepository
	refs           repository.ReferenceChecker
}

// NewUserService creates a new user service
func NewUserService(
	tx repository.Transactor,
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	permissionRepo repository.PermissionRepository,
	refs repository.ReferenceChecker,
) *UserService {
	return &UserService{
		tx:             tx,
		userRepo:       userRepo,
		roleRepo:       roleRepo,
		permissionRepo: permissionRepo,
		refs:           refs,
	}
}

// UserInput represents the create/update user input. Nil fields are left
// unchanged on update.
type UserInput struct {
	Username      string
	Email         *string
	Password      string
	FullName      string
	Mobile        string
	HotelID       *uuid.UUID
	OutletID      *uuid.UUID
	DesignationID *uuid.UUID
	UserTypeID    *uuid.UUID
	IsActive      *bool
	Roles         []string
}

// ListUsers returns a page of users. Outlet-bound callers only see their outlet.
func (s *UserService) ListUsers(ctx context.Context, params *pagination.PaginationParams, search string, outletID *uuid.UUID) (*pagination.PaginatedResult[entity.User], error) {
	if params == nil {
		params = pagination.DefaultPagination()
	}
	params.Validate()

	if !infraRepo.SkipsOutletScope(ctx) {
		bound, ok := infraRepo.GetOutletID(ctx)
		if !ok {
			return nil, apperror.ErrForbidden
		}
		outletID = &bound
	}

	users, total, err := s.userRepo.List(ctx, params, strings.TrimSpace(search), outletID)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(users, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// GetUser returns a user by ID with roles and permissions
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetWithRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || !s.canManage(ctx, user) {
		return nil, apperror.ErrNotFound
	}
	return user, nil
}

// CreateUser creates a staff account with its roles
func (s *UserService) CreateUser(ctx context.Context, input *UserInput) (*entity.User, error) {
	if strings.TrimSpace(input.Username) == "" {
		return nil, apperror.NewFieldError("username", "Username is required")
	}
	if input.Password == "" {
		return nil, apperror.NewFieldError("password", "Password is required")
	}

	user := &entity.User{IsActive: true, Provider: "local"}
	if err := s.apply(ctx, user, input); err != nil {
		return nil, err
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkUnique(ctx, user); err != nil {
			return err
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			if infraRepo.IsDuplicateKey(err) {
				return apperror.NewConflictError("Username or email already in use")
			}
			return err
		}
		return s.syncRoles(ctx, user.ID, input.Roles)
	})
	if err != nil {
		return nil, err
	}
	return s.userRepo.GetWithRoles(ctx, user.ID)
}

// UpdateUser updates a staff account. Roles are replaced when given.
func (s *UserService) UpdateUser(ctx context.Context, userID uuid.UUID, input *UserInput) (*entity.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, user, input); err != nil {
		return nil, err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkUnique(ctx, user); err != nil {
			return err
		}
		if err := s.userRepo.Update(ctx, user); err != nil {
			if infraRepo.IsDuplicateKey(err) {
				return apperror.NewConflictError("Username or email already in use")
			}
			return err
		}
		if input.Roles == nil {
			return nil
		}
		return s.syncRoles(ctx, user.ID, input.Roles)
	})
	if err != nil {
		return nil, err
	}
	return s.userRepo.GetWithRoles(ctx, user.ID)
}

func (s *UserService) apply(ctx context.Context, user *entity.User, input *UserInput) error {
	if username := strings.TrimSpace(input.Username); username != "" {
		user.Username = username
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" {
			user.Email = nil
		} else {
			user.Email = &email
		}
	}
	if input.Password != "" {
		if len(input.Password) < 6 {
			return apperror.NewFieldError("password", "Password must be at least 6 characters")
		}
		hashed, err := utils.HashPassword(input.Password)
		if err != nil {
			return err
		}
		user.Password = hashed
	}
	if name := strings.TrimSpace(input.FullName); name != "" {
		user.FullName = name
	}
	if user.FullName == "" {
		user.FullName = user.Username
	}
	if input.Mobile != "" {
		user.Mobile = input.Mobile
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	refs := []Reference{
		{Field: "hotel_id", Table: "hotels", ID: input.HotelID},
		{Field: "outlet_id", Table: "outlets", ID: input.OutletID},
		{Field: "designation_id", Table: "designations", ID: input.DesignationID},
		{Field: "user_type_id", Table: "user_types", ID: input.UserTypeID},
	}
	for _, ref := range refs {
		if ref.ID == nil {
			continue
		}
		ok, err := s.refs.Exists(ctx, ref.Table, *ref.ID)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NewFieldError(ref.Field, "Referenced record does not exist")
		}
	}
	if input.HotelID != nil {
		user.HotelID = input.HotelID
	}
	if input.OutletID != nil {
		user.OutletID = input.OutletID
	}
	if input.DesignationID != nil {
		user.DesignationID = input.DesignationID
	}
	if input.UserTypeID != nil {
		user.UserTypeID = input.UserTypeID
	}

	if !s.canManage(ctx, user) {
		return apperror.NewForbiddenError("You cannot manage users of another outlet")
	}
	return nil
}

func (s *UserService) checkUnique(ctx context.Context, user *entity.User) error {
	existing, err := s.userRepo.GetByUsername(ctx, user.Username)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != user.ID {
		return apperror.NewFieldError("username", "Username already taken")
	}
	if user.Email == nil {
		return nil
	}
	existing, err = s.userRepo.GetByEmail(ctx, *user.Email)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != user.ID {
		return apperror.NewFieldError("email", "Email already registered")
	}
	return nil
}

func (s *UserService) syncRoles(ctx context.Context, userID uuid.UUID, names []string) error {
	seen := make(map[string]bool, len(names))
	unique := names[:0:0]
	for _, name := range names {
		if !seen[name] {
			seen[name] = true
			unique = append(unique, name)
		}
	}
	names = unique
	roles, err := s.roleRepo.GetByNames(ctx, names)
	if err != nil {
		return err
	}
	if len(roles) != len(names) {
		return apperror.NewFieldError("roles", "Unknown role")
	}
	ids := make([]uint, 0, len(roles))
	for _, role := range roles {
		ids = append(ids, role.ID)
	}
	return s.userRepo.SyncRoles(ctx, userID, ids)
}

// canManage reports whether the caller may see or edit user. Users without
// an outlet are managed by admins only.
func (s *UserService) canManage(ctx context.Context, user *entity.User) bool {
	if user.OutletID == nil {
		return infraRepo.SkipsOutletScope(ctx)
	}
	return infraRepo.CanAccessOutlet(ctx, *user.OutletID)
}

// DeleteUser soft deletes a user
func (s *UserService) DeleteUser(ctx context.Context, callerID, userID uuid.UUID) error {
	if callerID == userID {
		return apperror.NewBadRequestError("You cannot delete your own account")
	}
	if _, err := s.GetUser(ctx, userID); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, userID)
}

// ListRoles returns all available roles
func (s *UserService) ListRoles(ctx context.Context) ([]entity.Role, error) {
	return s.roleRepo.List(ctx)
}

// ListPermissions returns all available permissions
func (s *UserService) ListPermissions(ctx context.Context) ([]entity.Permission, error) {
	return s.permissionRepo.List(ctx)
}
