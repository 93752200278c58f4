package relayhub

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/relayhub/client-go/internal/api"
	"github.com/relayhub/client-go/internal/apierrors"
)

// MessagingService accesses chats and messages across connected
// accounts.
type MessagingService struct {
	client *api.Client
}

// Chat is a conversation on a connected account.
type Chat struct {
	ID            string    `json:"id"`
	AccountID     string    `json:"account_id"`
	Provider      string    `json:"provider"`
	Name          string    `json:"name"`
	UnreadCount   int       `json:"unread_count"`
	LastMessageAt time.Time `json:"last_message_at"`
}

// ChatList is one page of chats.
type ChatList struct {
	Items  []Chat `json:"items"`
	Cursor string `json:"cursor"`
}

// Message is a single chat message.
type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	SenderID  string    `json:"sender_id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Seen      bool      `json:"seen"`
}

// MessageList is one page of messages.
type MessageList struct {
	Items  []Message `json:"items"`
	Cursor string    `json:"cursor"`
}

// Attendee is a chat participant.
type Attendee struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ProviderID string `json:"provider_id"`
}

// ListChatsOptions control chat listing. AccountID is required;
// zero-valued options are omitted from the request.
type ListChatsOptions struct {
	AccountID string
	Unread    *bool
	Cursor    string
	Limit     int
}

// ListChats returns a page of chats for an account.
func (s *MessagingService) ListChats(ctx context.Context, opts *ListChatsOptions) (*ChatList, error) {
	if opts == nil || opts.AccountID == "" {
		return nil, &APIError{
			Kind:    KindValidation,
			Message: "AccountID is required",
		}
	}

	q := api.NewQuery().Set("account_id", opts.AccountID)
	q.SetBoolOpt("unread", opts.Unread)
	if opts.Cursor != "" {
		q.Set("cursor", opts.Cursor)
	}
	if opts.Limit > 0 {
		q.SetInt("limit", opts.Limit)
	}

	var out ChatList
	if _, err := s.client.Get(ctx, "/api/v1/chats", q, &out, api.WithAccount(opts.AccountID)); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetChat returns one chat by id. Chat ids are globally unique, so no
// account context is needed; the call shares the global rate-limit
// bucket.
func (s *MessagingService) GetChat(ctx context.Context, chatID string) (*Chat, error) {
	path := fmt.Sprintf("/api/v1/chats/%s", url.PathEscape(chatID))

	var out Chat
	if _, err := s.client.Get(ctx, path, nil, &out); err != nil {
		return nil, apierrors.WithResource(err, apierrors.ResourceChat, chatID)
	}
	return &out, nil
}

// ListMessagesOptions control message listing within a chat.
type ListMessagesOptions struct {
	Cursor string
	Limit  int
}

// ListMessages returns a page of messages in a chat, newest first.
func (s *MessagingService) ListMessages(ctx context.Context, chatID string, opts *ListMessagesOptions) (*MessageList, error) {
	path := fmt.Sprintf("/api/v1/chats/%s/messages", url.PathEscape(chatID))

	q := api.NewQuery()
	if opts != nil {
		if opts.Cursor != "" {
			q.Set("cursor", opts.Cursor)
		}
		if opts.Limit > 0 {
			q.SetInt("limit", opts.Limit)
		}
	}

	var out MessageList
	if _, err := s.client.Get(ctx, path, q, &out); err != nil {
		return nil, apierrors.WithResource(err, apierrors.ResourceChat, chatID)
	}
	return &out, nil
}

// sendMessageRequest is the message submission payload.
type sendMessageRequest struct {
	Text string `json:"text"`
}

// SendMessage posts a text message to a chat.
func (s *MessagingService) SendMessage(ctx context.Context, chatID, text string) (*Message, error) {
	path := fmt.Sprintf("/api/v1/chats/%s/messages", url.PathEscape(chatID))

	var out Message
	if _, err := s.client.Post(ctx, path, sendMessageRequest{Text: text}, &out); err != nil {
		return nil, apierrors.WithResource(err, apierrors.ResourceChat, chatID)
	}
	return &out, nil
}

// ListAttendees returns the participants of a chat.
func (s *MessagingService) ListAttendees(ctx context.Context, chatID string) ([]Attendee, error) {
	path := fmt.Sprintf("/api/v1/chats/%s/attendees", url.PathEscape(chatID))

	var out struct {
		Items []Attendee `json:"items"`
	}
	if _, err := s.client.Get(ctx, path, nil, &out); err != nil {
		return nil, apierrors.WithResource(err, apierrors.ResourceChat, chatID)
	}
	return out.Items, nil
}
