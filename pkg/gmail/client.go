package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"resume-screening-backend/internal/domain"
	"resume-screening-backend/pkg/logger"
)

const listPageSize = 10

// resume formats accepted from inbound mail
var resumeExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".doc":  true,
}

// Options configures the Gmail client. TokenJSON takes precedence over
// TokenPath so deployments can inject the token without a mounted file.
type Options struct {
	TokenJSON       string
	TokenPath       string
	SenderEmail     string
	MaxAttachmentMB int
}

// Client wraps the Gmail API for the mailbox operations the pipeline needs:
// list unread, fetch and decode, mark read, and send.
type Client struct {
	svc                *gmail.Service
	tokenSource        oauth2.TokenSource
	sender             string
	maxAttachmentBytes int64
}

// authorizedUserToken is the JSON produced by the Google OAuth consent flow
// for an installed app (client id and secret embedded alongside the tokens).
type authorizedUserToken struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	Token        string   `json:"token"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	Scopes       []string `json:"scopes"`
	Expiry       string   `json:"expiry"`
}

func NewClient(ctx context.Context, opts Options) (*Client, error) {
	raw := []byte(opts.TokenJSON)
	if len(raw) == 0 {
		b, err := os.ReadFile(opts.TokenPath)
		if err != nil {
			return nil, fmt.Errorf("read gmail token: %w", err)
		}
		raw = b
	}

	var stored authorizedUserToken
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("parse gmail token: %w", err)
	}

	access := stored.AccessToken
	if access == "" {
		access = stored.Token
	}
	tok := &oauth2.Token{
		AccessToken:  access,
		RefreshToken: stored.RefreshToken,
		TokenType:    "Bearer",
	}
	if stored.Expiry != "" {
		if t, err := time.Parse(time.RFC3339, stored.Expiry); err == nil {
			tok.Expiry = t
		}
	}

	conf := &oauth2.Config{
		ClientID:     stored.ClientID,
		ClientSecret: stored.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       stored.Scopes,
	}
	ts := conf.TokenSource(ctx, tok)

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, ts)))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}

	maxMB := opts.MaxAttachmentMB
	if maxMB <= 0 {
		maxMB = 10
	}

	return &Client{
		svc:                svc,
		tokenSource:        ts,
		sender:             opts.SenderEmail,
		maxAttachmentBytes: int64(maxMB) << 20,
	}, nil
}

// ListUnread returns ids of messages matching the query, oldest batch first
// capped at listPageSize per poll cycle.
func (c *Client) ListUnread(ctx context.Context, query string) ([]string, error) {
	resp, err := c.svc.Users.Messages.List("me").Q(query).MaxResults(listPageSize).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	ids := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		ids = append(ids, m.Id)
	}
	return ids, nil
}

// GetMessage fetches and fully decodes a message: headers, plain-text body,
// and every resume-format attachment within the size cap.
func (c *Client) GetMessage(ctx context.Context, id string) (*domain.MailMessage, error) {
	msg, err := c.svc.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get message %s: %w", id, err)
	}

	out := &domain.MailMessage{ID: msg.Id}
	for _, h := range msg.Payload.Headers {
		switch h.Name {
		case "Subject":
			out.Subject = h.Value
		case "From":
			out.Sender = h.Value
		case "Date":
			out.Date = h.Value
		}
	}

	out.Body = extractBody(msg.Payload)

	if err := c.collectAttachments(ctx, msg.Id, msg.Payload, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) collectAttachments(ctx context.Context, msgID string, part *gmail.MessagePart, out *domain.MailMessage) error {
	if part == nil {
		return nil
	}
	if part.Filename != "" && part.Body != nil && part.Body.AttachmentId != "" {
		ext := strings.ToLower(filepath.Ext(part.Filename))
		if !resumeExtensions[ext] {
			logger.Log.Debug("Skipping non-resume attachment", "filename", part.Filename)
		} else if part.Body.Size > c.maxAttachmentBytes {
			logger.Log.Warn("Skipping oversized attachment",
				"filename", part.Filename,
				"size", part.Body.Size)
		} else {
			att, err := c.svc.Users.Messages.Attachments.Get("me", msgID, part.Body.AttachmentId).Context(ctx).Do()
			if err != nil {
				return fmt.Errorf("get attachment %s: %w", part.Filename, err)
			}
			data, err := base64.URLEncoding.DecodeString(att.Data)
			if err != nil {
				return fmt.Errorf("decode attachment %s: %w", part.Filename, err)
			}
			out.Attachments = append(out.Attachments, domain.MailAttachment{
				Filename:     part.Filename,
				MimeType:     part.MimeType,
				AttachmentID: part.Body.AttachmentId,
				Data:         data,
			})
		}
	}
	for _, p := range part.Parts {
		if err := c.collectAttachments(ctx, msgID, p, out); err != nil {
			return err
		}
	}
	return nil
}

// extractBody walks the MIME tree for the first text/plain part.
func extractBody(part *gmail.MessagePart) string {
	if part == nil {
		return ""
	}
	if part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "" {
		decoded, err := base64.URLEncoding.DecodeString(part.Body.Data)
		if err != nil {
			return ""
		}
		return string(decoded)
	}
	for _, p := range part.Parts {
		if body := extractBody(p); body != "" {
			return body
		}
	}
	return ""
}

// MarkRead removes the UNREAD label. Only called after the message has been
// fully processed, so a crash mid-message leaves it for the next poll.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	_, err := c.svc.Users.Messages.Modify("me", id, &gmail.ModifyMessageRequest{
		RemoveLabelIds: []string{"UNREAD"},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("mark message %s read: %w", id, err)
	}
	return nil
}
