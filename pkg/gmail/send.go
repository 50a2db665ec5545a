package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"google.golang.org/api/gmail/v1"

	"resume-screening-backend/internal/domain"
	"resume-screening-backend/pkg/logger"
)

const sendEndpoint = "https://gmail.googleapis.com/gmail/v1/users/me/messages/send"

// Send delivers an HTML email. Calendar invite parts (text/calendar) are
// rendered inline so mail clients surface the RSVP banner; everything else
// is attached as a regular file. On client-library failure it retries once
// through the raw REST endpoint.
func (c *Client) Send(ctx context.Context, to, subject, htmlBody string, attachments []domain.OutgoingAttachment) error {
	raw, err := c.buildMIME(to, subject, htmlBody, attachments)
	if err != nil {
		return fmt.Errorf("build outgoing message: %w", err)
	}
	encoded := base64.URLEncoding.EncodeToString(raw)

	_, err = c.svc.Users.Messages.Send("me", &gmail.Message{Raw: encoded}).Context(ctx).Do()
	if err == nil {
		return nil
	}
	logger.Log.Warn("Gmail client send failed, retrying via REST endpoint", "error", err)

	if restErr := c.sendRaw(ctx, encoded); restErr != nil {
		return fmt.Errorf("send email to %s: %w", to, restErr)
	}
	return nil
}

func (c *Client) buildMIME(to, subject, htmlBody string, attachments []domain.OutgoingAttachment) ([]byte, error) {
	var buf bytes.Buffer
	mixed := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", c.sender)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mixed.Boundary())

	// alternative container keeps the HTML body and any inline calendar
	// part side by side
	altBuf := &bytes.Buffer{}
	alt := multipart.NewWriter(altBuf)

	htmlPart, err := alt.CreatePart(textproto.MIMEHeader{
		"Content-Type": {`text/html; charset="UTF-8"`},
	})
	if err != nil {
		return nil, err
	}
	if _, err := htmlPart.Write([]byte(htmlBody)); err != nil {
		return nil, err
	}

	var files []domain.OutgoingAttachment
	for _, att := range attachments {
		if strings.HasPrefix(att.MimeType, "text/calendar") {
			calPart, err := alt.CreatePart(textproto.MIMEHeader{
				"Content-Type": {`text/calendar; method=REQUEST; charset="UTF-8"`},
			})
			if err != nil {
				return nil, err
			}
			if _, err := calPart.Write(att.Data); err != nil {
				return nil, err
			}
			continue
		}
		files = append(files, att)
	}
	if err := alt.Close(); err != nil {
		return nil, err
	}

	altContainer, err := mixed.CreatePart(textproto.MIMEHeader{
		"Content-Type": {fmt.Sprintf("multipart/alternative; boundary=%q", alt.Boundary())},
	})
	if err != nil {
		return nil, err
	}
	if _, err := altContainer.Write(altBuf.Bytes()); err != nil {
		return nil, err
	}

	// calendar parts are additionally attached as .ics files so clients
	// without inline invite support can still import the event
	for _, att := range append(files, calendarFiles(attachments)...) {
		part, err := mixed.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {fmt.Sprintf("%s; name=%q", att.MimeType, att.Filename)},
			"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", att.Filename)},
			"Content-Transfer-Encoding": {"base64"},
		})
		if err != nil {
			return nil, err
		}
		if _, err := part.Write([]byte(base64.StdEncoding.EncodeToString(att.Data))); err != nil {
			return nil, err
		}
	}
	if err := mixed.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func calendarFiles(attachments []domain.OutgoingAttachment) []domain.OutgoingAttachment {
	var out []domain.OutgoingAttachment
	for _, att := range attachments {
		if strings.HasPrefix(att.MimeType, "text/calendar") {
			out = append(out, domain.OutgoingAttachment{
				Filename: att.Filename,
				MimeType: "application/ics",
				Data:     att.Data,
			})
		}
	}
	return out
}

// sendRaw bypasses the generated client and posts straight to the REST API.
func (c *Client) sendRaw(ctx context.Context, encoded string) error {
	tok, err := c.tokenSource.Token()
	if err != nil {
		return fmt.Errorf("refresh token: %w", err)
	}

	body, err := json.Marshal(map[string]string{"raw": encoded})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sendEndpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rest send returned status %d", resp.StatusCode)
	}
	return nil
}
