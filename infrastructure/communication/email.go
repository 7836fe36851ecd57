package communication

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

type EmailInfo struct {
	From        string
	To          []string
	Cc          []string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

type sesAPI interface {
	SendRawEmail(ctx context.Context, params *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error)
}

// Email sends notifications as plain text emails through SES.
type Email struct {
	client        sesAPI
	from          string
	to            []string
	subjectPrefix string
}

func NewEmail(ctx context.Context, from string, to []string) (*Email, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return newEmail(ses.NewFromConfig(cfg), from, to), nil
}

func newEmail(client sesAPI, from string, to []string) *Email {
	return &Email{client: client, from: from, to: to, subjectPrefix: "[Attendance Sync]"}
}

func (e *Email) Info(ctx context.Context, message string) error {
	return e.send(ctx, "Info", message)
}

func (e *Email) Error(ctx context.Context, message string) error {
	return e.send(ctx, "Error", message)
}

func (e *Email) send(ctx context.Context, level, message string) error {
	if len(e.to) == 0 {
		return nil
	}
	return SendEmail(ctx, e.client, &EmailInfo{
		From:    e.from,
		To:      e.to,
		Subject: fmt.Sprintf("%s %s", e.subjectPrefix, level),
		Text:    message,
	})
}

func SendEmail(ctx context.Context, client sesAPI, info *EmailInfo) error {
	emailRaw, err := BuildEmailBuffer(info)
	if err != nil {
		return err
	}

	_, err = client.SendRawEmail(ctx, &ses.SendRawEmailInput{
		RawMessage: &types.RawMessage{
			Data: emailRaw.Bytes(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func BuildEmailBuffer(info *EmailInfo) (*bytes.Buffer, error) {
	if info.From == "" || len(info.To) == 0 {
		return nil, fmt.Errorf("email requires a sender and at least one recipient")
	}

	var emailRaw bytes.Buffer
	writer := multipart.NewWriter(&emailRaw)
	boundary := writer.Boundary()

	headers := fmt.Sprintf("From: %s\r\n", info.From)
	headers += fmt.Sprintf("To: %s\r\n", strings.Join(info.To, ", "))
	if len(info.Cc) > 0 {
		headers += fmt.Sprintf("Cc: %s\r\n", strings.Join(info.Cc, ", "))
	}
	headers += fmt.Sprintf("Subject: %s\r\n", info.Subject)
	headers += "MIME-Version: 1.0\r\n"
	headers += fmt.Sprintf("Content-Type: multipart/mixed; boundary=\"%s\"\r\n", boundary)
	headers += "\r\n"
	emailRaw.WriteString(headers)

	// text/plain and text/html as alternatives
	altBuf := &bytes.Buffer{}
	altWriter := multipart.NewWriter(altBuf)

	altHeaders := textproto.MIMEHeader{}
	altHeaders.Set("Content-Type", "multipart/alternative; boundary="+altWriter.Boundary())
	altPart, err := writer.CreatePart(altHeaders)
	if err != nil {
		return nil, err
	}

	for _, body := range []struct{ contentType, content string }{
		{"text/plain; charset=UTF-8", info.Text},
		{"text/html; charset=UTF-8", info.HTML},
	} {
		if body.content == "" {
			continue
		}
		part, err := altWriter.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {body.contentType},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, err
		}
		qp := quotedprintable.NewWriter(part)
		qp.Write([]byte(body.content))
		qp.Close()
	}

	altWriter.Close()
	altPart.Write(altBuf.Bytes())

	for _, att := range info.Attachments {
		h := textproto.MIMEHeader{}
		h.Set("Content-Type", fmt.Sprintf("%s; name=\"%s\"", att.ContentType, att.Filename))
		h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", att.Filename))
		h.Set("Content-Transfer-Encoding", "base64")

		part, err := writer.CreatePart(h)
		if err != nil {
			return nil, err
		}
		b := make([]byte, base64.StdEncoding.EncodedLen(len(att.Content)))
		base64.StdEncoding.Encode(b, att.Content)

		// wrap lines at 76 chars
		for i := 0; i < len(b); i += 76 {
			end := min(i+76, len(b))
			part.Write(b[i:end])
			part.Write([]byte("\r\n"))
		}
	}

	writer.Close()

	return &emailRaw, nil
}
