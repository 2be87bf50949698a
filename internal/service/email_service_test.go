package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
)

// fakeSES records the emails it is asked to send
type fakeSES struct {
	mu     sync.Mutex
	inputs []*sesv2.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, params)
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSendParentInvite(t *testing.T) {
	sender := &fakeSES{}
	svc := newEmailServiceWithClient(sender, "noreply@maitje.nl", "mAItje", "https://maitje.nl", true)

	expires := time.Date(2026, 10, 24, 12, 0, 0, 0, time.UTC)
	if err := svc.SendParentInvite(context.Background(), "tweede@example.com", "Mama <Els>", "Sanne", "ABCD2345", expires); err != nil {
		t.Fatalf("SendParentInvite() error = %v", err)
	}

	if len(sender.inputs) != 1 {
		t.Fatalf("emails sent = %d, want 1", len(sender.inputs))
	}
	input := sender.inputs[0]
	if got := *input.FromEmailAddress; got != "mAItje <noreply@maitje.nl>" {
		t.Errorf("from = %q", got)
	}
	if got := input.Destination.ToAddresses; len(got) != 1 || got[0] != "tweede@example.com" {
		t.Errorf("to = %v", got)
	}

	html := *input.Content.Simple.Body.Html.Data
	for _, want := range []string{"ABCD2345", "https://maitje.nl/koppelen", "24-10-2026", "Mama &lt;Els&gt;"} {
		if !strings.Contains(html, want) {
			t.Errorf("html body missing %q", want)
		}
	}
	if strings.Contains(html, "<Els>") {
		t.Error("inviter name must be escaped in the html body")
	}
	if text := *input.Content.Simple.Body.Text.Data; !strings.Contains(text, "ABCD2345") {
		t.Errorf("text body missing code: %s", text)
	}
}

func TestSendEmailError(t *testing.T) {
	sender := &fakeSES{err: errors.New("throttled")}
	svc := newEmailServiceWithClient(sender, "noreply@maitje.nl", "", "https://maitje.nl", false)

	err := svc.SendWelcomeEmail(context.Background(), "ouder@example.com", "Ouder")
	if err == nil || !strings.Contains(err.Error(), "throttled") {
		t.Errorf("SendWelcomeEmail() error = %v, want wrapped send error", err)
	}
}

func TestDisabledEmailService(t *testing.T) {
	svc, err := NewEmailService(context.Background(), "eu-west-1", "", "", "https://maitje.nl", false)
	if err != nil {
		t.Fatalf("NewEmailService() error = %v", err)
	}
	if svc.IsEnabled() {
		t.Error("service without a from address should be disabled")
	}
	if err := svc.SendParentInvite(context.Background(), "a@example.com", "A", "B", "ABCD2345", time.Now()); err != nil {
		t.Errorf("disabled SendParentInvite() error = %v", err)
	}

	var nilService *EmailService
	if nilService.IsEnabled() {
		t.Error("nil service should report disabled")
	}
}
