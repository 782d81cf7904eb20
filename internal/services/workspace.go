package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/mail"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/thereayou/slack-lite/internal/database"
	"github.com/thereayou/slack-lite/internal/models"
)

const joinCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type WorkspaceService interface {
	Create(ctx context.Context, callerID uuid.UUID, name string) (*models.Workspace, error)
	Get(ctx context.Context, callerID, workspaceID uuid.UUID) (*WorkspaceDetail, error)
	List(ctx context.Context, callerID uuid.UUID) ([]models.Workspace, error)
	Join(ctx context.Context, callerID, workspaceID uuid.UUID, joinCode string) (*models.Member, error)
	Update(ctx context.Context, callerID, workspaceID uuid.UUID, in UpdateWorkspaceInput) (*models.Workspace, error)
	RegenerateJoinCode(ctx context.Context, callerID, workspaceID uuid.UUID) (string, error)
	Invite(ctx context.Context, callerID, workspaceID uuid.UUID, email string) error
}

type WorkspaceDetail struct {
	models.Workspace
	Role    models.Role       `json:"role"`
	Members []WorkspaceMember `json:"members"`
}

type WorkspaceMember struct {
	models.User
	MemberID uuid.UUID   `json:"member_id"`
	Role     models.Role `json:"role"`
}

type UpdateWorkspaceInput struct {
	Name        *string
	Description *string
}

type workspaceService struct {
	db        *database.Database
	mailer    Mailer
	publisher Publisher
	appURL    string
}

func NewWorkspaceService(db *database.Database, mailer Mailer, publisher Publisher, appURL string) WorkspaceService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &workspaceService{
		db:        db,
		mailer:    mailer,
		publisher: publisher,
		appURL:    strings.TrimRight(appURL, "/"),
	}
}

// Create stores the workspace and the creator's admin membership together.
func (s *workspaceService) Create(ctx context.Context, callerID uuid.UUID, name string) (*models.Workspace, error) {
	if callerID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("name is required")
	}

	code, err := generateJoinCode()
	if err != nil {
		return nil, err
	}

	ws := &models.Workspace{
		Name:      name,
		CreatedBy: callerID,
		JoinCode:  code,
	}
	err = s.db.Transaction(ctx, func(tx *database.Database) error {
		if err := tx.CreateWorkspace(ctx, ws); err != nil {
			return err
		}
		return tx.CreateMember(ctx, &models.Member{
			WorkspaceID: ws.ID,
			UserID:      callerID,
			Role:        models.RoleAdmin,
		})
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "workspace created", "workspace_id", ws.ID, "user_id", callerID)
	return ws, nil
}

// Get returns nil unless the caller is a member of the workspace.
func (s *workspaceService) Get(ctx context.Context, callerID, workspaceID uuid.UUID) (*WorkspaceDetail, error) {
	caller, err := workspaceMember(ctx, s.db, workspaceID, callerID)
	if isAccessDenied(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	ws, err := s.db.GetWorkspace(ctx, workspaceID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get workspace: %w", err)
	}

	members, err := s.db.GetWorkspaceMembers(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	detail := &WorkspaceDetail{
		Workspace: *ws,
		Role:      caller.Role,
		Members:   make([]WorkspaceMember, 0, len(members)),
	}
	for _, m := range members {
		if m.User == nil {
			continue
		}
		detail.Members = append(detail.Members, WorkspaceMember{User: *m.User, MemberID: m.ID, Role: m.Role})
	}
	return detail, nil
}

func (s *workspaceService) List(ctx context.Context, callerID uuid.UUID) ([]models.Workspace, error) {
	if callerID == uuid.Nil {
		return []models.Workspace{}, nil
	}
	workspaces, err := s.db.GetUserWorkspaces(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if workspaces == nil {
		workspaces = []models.Workspace{}
	}
	return workspaces, nil
}

// Join adds the caller as a member when joinCode matches. The code is
// compared case-insensitively after trimming.
func (s *workspaceService) Join(ctx context.Context, callerID, workspaceID uuid.UUID, joinCode string) (*models.Member, error) {
	if callerID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}

	ws, err := s.db.GetWorkspace(ctx, workspaceID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get workspace: %w", err)
	}

	if strings.ToUpper(strings.TrimSpace(joinCode)) != ws.JoinCode {
		return nil, validationError("invalid join code")
	}

	_, err = s.db.GetMember(ctx, workspaceID, callerID)
	switch {
	case err == nil:
		return nil, ErrAlreadyMember
	case !errors.Is(err, database.ErrNotFound):
		return nil, fmt.Errorf("get member: %w", err)
	}

	member := &models.Member{
		WorkspaceID: workspaceID,
		UserID:      callerID,
		Role:        models.RoleMember,
	}
	if err := s.db.CreateMember(ctx, member); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrAlreadyMember
		}
		return nil, err
	}

	slog.InfoContext(ctx, "member joined workspace", "workspace_id", workspaceID, "user_id", callerID)
	s.publisher.Publish(WorkspaceTopic(workspaceID), EventMemberJoined, member)
	return member, nil
}

func (s *workspaceService) Update(ctx context.Context, callerID, workspaceID uuid.UUID, in UpdateWorkspaceInput) (*models.Workspace, error) {
	ws, err := s.requireAdmin(ctx, callerID, workspaceID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, validationError("name cannot be empty")
		}
		ws.Name = name
	}
	if in.Description != nil {
		ws.Description = strings.TrimSpace(*in.Description)
	}

	if err := s.db.UpdateWorkspace(ctx, ws); err != nil {
		return nil, err
	}

	s.publisher.Publish(WorkspaceTopic(ws.ID), EventWorkspaceUpdated, ws)
	return ws, nil
}

func (s *workspaceService) RegenerateJoinCode(ctx context.Context, callerID, workspaceID uuid.UUID) (string, error) {
	ws, err := s.requireAdmin(ctx, callerID, workspaceID)
	if err != nil {
		return "", err
	}

	code, err := generateJoinCode()
	if err != nil {
		return "", err
	}
	ws.JoinCode = code
	if err := s.db.UpdateWorkspace(ctx, ws); err != nil {
		return "", err
	}

	slog.InfoContext(ctx, "join code regenerated", "workspace_id", workspaceID)
	return code, nil
}

// Invite emails a join link to address on behalf of a workspace member.
func (s *workspaceService) Invite(ctx context.Context, callerID, workspaceID uuid.UUID, address string) error {
	if _, err := workspaceMember(ctx, s.db, workspaceID, callerID); err != nil {
		return err
	}

	parsed, err := mail.ParseAddress(strings.TrimSpace(address))
	if err != nil {
		return validationError("invalid email address")
	}

	ws, err := s.db.GetWorkspace(ctx, workspaceID)
	if errors.Is(err, database.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get workspace: %w", err)
	}

	inviter, err := s.db.GetUser(ctx, callerID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("get user: %w", err)
	}

	if s.mailer == nil {
		return fmt.Errorf("%w: no mailer configured", ErrEmailDelivery)
	}
	link := s.inviteLink(ws)
	if err := s.mailer.SendWorkspaceInvite(parsed.Address, ws.Name, inviter.DisplayName(), link); err != nil {
		slog.ErrorContext(ctx, "failed to send invite", "error", err, "workspace_id", workspaceID)
		return fmt.Errorf("%w: %v", ErrEmailDelivery, err)
	}

	slog.InfoContext(ctx, "workspace invite sent", "workspace_id", workspaceID, "user_id", callerID)
	return nil
}

func (s *workspaceService) inviteLink(ws *models.Workspace) string {
	q := url.Values{}
	q.Set("workspaceId", ws.ID.String())
	q.Set("joinCode", ws.JoinCode)
	return s.appURL + "/?" + q.Encode()
}

func (s *workspaceService) requireAdmin(ctx context.Context, callerID, workspaceID uuid.UUID) (*models.Workspace, error) {
	member, err := workspaceMember(ctx, s.db, workspaceID, callerID)
	if err != nil {
		return nil, err
	}
	if !member.IsAdmin() {
		return nil, ErrNotAuthorized
	}

	ws, err := s.db.GetWorkspace(ctx, workspaceID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get workspace: %w", err)
	}
	return ws, nil
}

func generateJoinCode() (string, error) {
	max := big.NewInt(int64(len(joinCodeAlphabet)))
	code := make([]byte, models.JoinCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate join code: %w", err)
		}
		code[i] = joinCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
