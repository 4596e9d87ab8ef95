package notification

import (
	"context"
	"time"

	"github.com/cutmatch/cutmatch-api/internal/app"
	"github.com/cutmatch/cutmatch-api/internal/db"
	svcErr "github.com/cutmatch/cutmatch-api/internal/errors"
	"github.com/cutmatch/cutmatch-api/internal/repository"
)

// PostSummary is the part of a post embedded in a notification.
type PostSummary struct {
	ID        string        `json:"_id"`
	Text      string        `json:"text"`
	ImageURLs db.StringList `json:"imageUrls"`
}

// View is a notification with sender and post expanded.
type View struct {
	ID        string          `json:"_id"`
	Recipient string          `json:"recipient"`
	Sender    *db.UserSummary `json:"sender"`
	Type      string          `json:"type"`
	Post      *PostSummary    `json:"post,omitempty"`
	IsRead    bool            `json:"isRead"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Service lists and manages a user's notifications and emits new ones.
type Service struct {
	appCtx        *app.AppContext
	notifications *repository.NotificationRepository
	users         *repository.UserRepository
	posts         *repository.PostRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:        appCtx,
		notifications: repository.NewNotificationRepository(appCtx.DB),
		users:         repository.NewUserRepository(appCtx.DB),
		posts:         repository.NewPostRepository(appCtx.DB),
	}
}

// NotifyFollow records that senderID started following recipientID.
func (s *Service) NotifyFollow(ctx context.Context, senderID, recipientID string) error {
	n := &db.Notification{
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        db.NotificationFollow,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		s.appCtx.Logger.Error("create follow notification failed", "sender", senderID, "recipient", recipientID, "err", err)
		return err
	}
	s.appCtx.Logger.Debug("follow notification created", "id", n.ID, "recipient", recipientID)
	return nil
}

// List returns every notification of recipientID, newest first.
//
// Behavior:
//   - Sender is expanded to {_id, username, profileImageUrl}; nil if the
//     sender account is gone.
//   - Post is expanded to {_id, text, imageUrls} when set and still present.
func (s *Service) List(ctx context.Context, recipientID string) ([]View, error) {
	list, err := s.notifications.ListForRecipient(ctx, recipientID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	senderIDs := make([]string, 0, len(list))
	for _, n := range list {
		senderIDs = append(senderIDs, n.SenderID)
	}
	senders, err := s.users.GetByIDs(ctx, senderIDs)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	views := make([]View, 0, len(list))
	for _, n := range list {
		v := View{
			ID:        n.ID,
			Recipient: n.RecipientID,
			Sender:    senders[n.SenderID].Summary(),
			Type:      n.Type,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
			UpdatedAt: n.UpdatedAt,
		}
		if n.PostID != nil {
			if p, err := s.posts.GetByID(ctx, *n.PostID); err == nil {
				v.Post = &PostSummary{ID: p.ID, Text: p.Text, ImageURLs: p.ImageURLs}
			}
		}
		views = append(views, v)
	}
	return views, nil
}

// MarkAllRead flags every unread notification of recipientID as read.
func (s *Service) MarkAllRead(ctx context.Context, recipientID string) error {
	n, err := s.notifications.MarkAllRead(ctx, recipientID)
	if err != nil {
		return svcErr.Map(err)
	}
	s.appCtx.Logger.Debug("notifications marked read", "recipient", recipientID, "count", n)
	return nil
}

// Delete removes a notification. Only its recipient may do so.
func (s *Service) Delete(ctx context.Context, id string, caller *db.User) error {
	n, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		return svcErr.MapNotFound(err, "Notification not found")
	}
	if n.RecipientID != caller.ID {
		return svcErr.Forbidden("Not authorized to delete this notification")
	}
	return svcErr.Map(s.notifications.Delete(ctx, id))
}
