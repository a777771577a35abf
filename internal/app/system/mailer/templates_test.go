package mailer

import (
	"strings"
	"testing"
)

func TestBuildInviteEmail(t *testing.T) {
	email := BuildInviteEmail(InviteEmailData{
		SiteName:    "Circles",
		CircleName:  "The Martins",
		InviterName: "Alex",
		AcceptLink:  "https://circles.example.com/invitations/accept?invitationId=inv_123",
		ExpiresIn:   "7 days",
	})

	if !strings.Contains(email.Subject, "Alex") || !strings.Contains(email.Subject, "The Martins") {
		t.Errorf("subject missing inviter or circle: %q", email.Subject)
	}

	if !strings.Contains(email.TextBody, "https://circles.example.com/invitations/accept?invitationId=inv_123") {
		t.Error("text body missing accept link")
	}
	if !strings.Contains(email.TextBody, "7 days") {
		t.Error("text body missing expiry")
	}

	if !strings.Contains(email.HTMLBody, "The Martins") {
		t.Error("HTML body missing circle name")
	}
	if !strings.Contains(email.HTMLBody, `href="https://circles.example.com/invitations/accept?invitationId=inv_123"`) {
		t.Error("HTML body missing accept link")
	}
}

func TestBuildInviteEmail_EscapesHTML(t *testing.T) {
	email := BuildInviteEmail(InviteEmailData{
		SiteName:    "Circles",
		CircleName:  `<script>alert("x")</script>`,
		InviterName: "Alex",
		AcceptLink:  "https://circles.example.com/accept",
		ExpiresIn:   "7 days",
	})

	if strings.Contains(email.HTMLBody, "<script>") {
		t.Error("circle name must be HTML-escaped in the HTML body")
	}
}

func TestBuildMessage_Multipart(t *testing.T) {
	s := NewSMTPSender("localhost", 1025, "", "", "noreply@circles.example.com", "Circles", nil)

	msg, err := s.buildMessage(Email{
		To:       "aunt@example.com",
		Subject:  "Subject line",
		TextBody: "plain text",
		HTMLBody: "<p>html</p>",
	})
	if err != nil {
		t.Fatalf("buildMessage failed: %v", err)
	}

	raw := string(msg)
	if !strings.Contains(raw, "To: aunt@example.com") {
		t.Error("missing To header")
	}
	if !strings.Contains(raw, "Subject: Subject line") {
		t.Error("missing Subject header")
	}
	if !strings.Contains(raw, "multipart/alternative") {
		t.Error("expected multipart/alternative content type")
	}
	if !strings.Contains(raw, "text/plain") || !strings.Contains(raw, "text/html") {
		t.Error("expected both text and HTML parts")
	}
}
