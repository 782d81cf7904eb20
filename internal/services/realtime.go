package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/thereayou/slack-lite/internal/database"
)

const (
	EventMessageCreated       = "message_created"
	EventMessageUpdated       = "message_updated"
	EventMessageDeleted       = "message_deleted"
	EventDirectMessageCreated = "direct_message_created"
	EventDirectMessageUpdated = "direct_message_updated"
	EventDirectMessageDeleted = "direct_message_deleted"
	EventDirectMessagesRead   = "direct_messages_read"
	EventMemberJoined         = "member_joined"
	EventWorkspaceUpdated     = "workspace_updated"
	EventChannelCreated       = "channel_created"
	EventChannelMemberAdded   = "channel_member_added"
)

const (
	topicChannel      = "channel"
	topicWorkspace    = "workspace"
	topicConversation = "dm"
)

func ChannelTopic(channelID uuid.UUID) string {
	return topicChannel + ":" + channelID.String()
}

func WorkspaceTopic(workspaceID uuid.UUID) string {
	return topicWorkspace + ":" + workspaceID.String()
}

// ConversationTopic names the direct message stream between a and b. The pair
// is ordered so both participants derive the same topic.
func ConversationTopic(workspaceID, a, b uuid.UUID) string {
	first, second := a.String(), b.String()
	if second < first {
		first, second = second, first
	}
	return strings.Join([]string{topicConversation, workspaceID.String(), first, second}, ":")
}

type RealtimeService interface {
	// CanSubscribe reports whether callerID may receive events for topic. The
	// returned topic is the canonical form events are published on; clients
	// must be subscribed to it rather than to the raw input.
	CanSubscribe(ctx context.Context, callerID uuid.UUID, topic string) (string, bool, error)
}

type realtimeService struct {
	db *database.Database
}

func NewRealtimeService(db *database.Database) RealtimeService {
	return &realtimeService{db: db}
}

func (s *realtimeService) CanSubscribe(ctx context.Context, callerID uuid.UUID, topic string) (string, bool, error) {
	kind, ids, ok := parseTopic(topic)
	if !ok {
		return "", false, validationError("unknown topic %q", topic)
	}
	if callerID == uuid.Nil {
		return "", false, nil
	}

	var (
		canonical string
		err       error
	)
	switch kind {
	case topicChannel:
		canonical = ChannelTopic(ids[0])
		_, _, err = visibleChannel(ctx, s.db, callerID, ids[0])
	case topicWorkspace:
		canonical = WorkspaceTopic(ids[0])
		_, err = workspaceMember(ctx, s.db, ids[0], callerID)
	case topicConversation:
		if callerID != ids[1] && callerID != ids[2] {
			return "", false, nil
		}
		canonical = ConversationTopic(ids[0], ids[1], ids[2])
		_, err = workspaceMember(ctx, s.db, ids[0], callerID)
	default:
		return "", false, nil
	}

	ok, err = allowed(err)
	if !ok {
		return "", false, err
	}
	return canonical, true, nil
}

func allowed(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case isAccessDenied(err):
		return false, nil
	}
	return false, err
}

func parseTopic(topic string) (string, []uuid.UUID, bool) {
	parts := strings.Split(topic, ":")
	if len(parts) < 2 {
		return "", nil, false
	}

	want := map[string]int{topicChannel: 1, topicWorkspace: 1, topicConversation: 3}
	n, known := want[parts[0]]
	if !known || len(parts)-1 != n {
		return "", nil, false
	}

	ids := make([]uuid.UUID, 0, n)
	for _, raw := range parts[1:] {
		id, err := uuid.Parse(raw)
		if err != nil {
			return "", nil, false
		}
		ids = append(ids, id)
	}
	return parts[0], ids, true
}
