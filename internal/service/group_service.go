package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/kharcha/kharcha/internal/apperr"
	"github.com/kharcha/kharcha/internal/models"
	"github.com/kharcha/kharcha/internal/storage"
)

// GroupService manages groups and their membership.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// Create creates a group with the creator as its first admin.
func (s *GroupService) Create(ctx context.Context, creatorID, name string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.New(apperr.Validation, "group name is required")
	}

	group := &models.Group{
		Name:      name,
		CreatedBy: creatorID,
		Members: []models.GroupMember{
			{UserID: creatorID, Role: models.RoleAdmin, JoinedAt: time.Now().Unix()},
		},
	}

	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, apperr.Wrap(apperr.Internal, err, "failed to create group")
	}

	slog.Info("Group created", "group_id", group.ID, "created_by", creatorID)
	return group, nil
}

// Get retrieves a group. The caller must be a member.
func (s *GroupService) Get(ctx context.Context, callerID, groupID string) (*models.Group, error) {
	return s.requireMembership(ctx, callerID, groupID)
}

// ListMine retrieves all groups the caller belongs to.
func (s *GroupService) ListMine(ctx context.Context, callerID string) ([]*models.Group, error) {
	groups, err := s.store.ListGroupsByUser(ctx, callerID)
	if err != nil {
		slog.Error("ListGroupsByUser failed", "user_id", callerID, "error", err)
		return nil, apperr.Wrap(apperr.Internal, err, "failed to list groups")
	}
	return groups, nil
}

// AddMember adds a user to a group. Only admins may add members.
func (s *GroupService) AddMember(ctx context.Context, callerID, groupID, userID, role string) (*models.Group, error) {
	if role == "" {
		role = models.RoleMember
	}
	if role != models.RoleAdmin && role != models.RoleMember {
		return nil, apperr.New(apperr.Validation, "invalid role: %s", role)
	}

	group, err := s.requireMembership(ctx, callerID, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsAdmin(callerID) {
		return nil, apperr.New(apperr.Authorization, "only group admins can add members")
	}
	if group.IsMember(userID) {
		return nil, apperr.Conflicting(groupID, "user is already a member of this group")
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		slog.Error("AddMember: failed to get user", "user_id", userID, "error", err)
		return nil, apperr.Wrap(apperr.Internal, err, "failed to look up user")
	}
	if user == nil {
		return nil, apperr.New(apperr.NotFound, "user not found: %s", userID)
	}

	member := models.GroupMember{UserID: userID, Role: role, JoinedAt: time.Now().Unix()}
	if err := s.store.AddGroupMember(ctx, groupID, member); err != nil {
		slog.Error("AddGroupMember failed", "group_id", groupID, "user_id", userID, "error", err)
		return nil, apperr.Wrap(apperr.Internal, err, "failed to add member")
	}

	slog.Info("Member added to group", "group_id", groupID, "user_id", userID, "role", role)
	group.Members = append(group.Members, member)
	return group, nil
}

// requireMembership loads the group and checks the caller belongs to it.
func (s *GroupService) requireMembership(ctx context.Context, callerID, groupID string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		slog.Error("GetGroup failed", "group_id", groupID, "error", err)
		return nil, apperr.Wrap(apperr.Internal, err, "failed to load group")
	}
	if group == nil {
		return nil, apperr.New(apperr.NotFound, "group not found: %s", groupID)
	}
	if !group.IsMember(callerID) {
		return nil, apperr.New(apperr.Authorization, "you must be a member of this group")
	}
	return group, nil
}
