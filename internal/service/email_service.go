package service

import (
	"context"
	"fmt"
	"html"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// sesClient is the part of the SES v2 client the email service uses
type sesClient interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     sesClient
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	debug      bool
}

// NewEmailService creates a new email service. Without a from address the
// service is disabled and sending is a no-op.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName, appBaseURL string, debug bool) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, debug: debug, appBaseURL: appBaseURL}, nil
	}

	if debug {
		log.Printf("[DEBUG] Initializing email service: region=%s from=%s", awsRegion, fromEmail)
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)
	return newEmailServiceWithClient(sesv2.NewFromConfig(cfg), fromEmail, fromName, appBaseURL, debug), nil
}

func newEmailServiceWithClient(client sesClient, fromEmail, fromName, appBaseURL string, debug bool) *EmailService {
	return &EmailService{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		debug:      debug,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s != nil && s.enabled
}

const emailLayout = `<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #ff8a3d; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #fff8f0; padding: 30px; border-radius: 0 0 5px 5px; }
		.code { font-size: 28px; letter-spacing: 6px; font-weight: bold; text-align: center; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header"><h1>%s</h1></div>
		<div class="content">%s</div>
		<div class="footer"><p>Dit is een automatisch bericht van mAItje. Je kunt hier niet op antwoorden.</p></div>
	</div>
</body>
</html>
`

// SendParentInvite emails a connection code to a second parent
func (s *EmailService) SendParentInvite(ctx context.Context, toEmail, inviterName, childName, code string, expiresAt time.Time) error {
	if !s.IsEnabled() {
		log.Printf("Skipping email send (service disabled): parent invite to %s", toEmail)
		return nil
	}

	subject := fmt.Sprintf("%s nodigt je uit om mee te kijken met %s", inviterName, childName)
	expires := expiresAt.Format("02-01-2006")
	link := s.appBaseURL + "/koppelen"

	htmlContent := fmt.Sprintf(`
			<p>Hallo,</p>
			<p>%s wil samen met jou de voortgang van <strong>%s</strong> in mAItje volgen.</p>
			<p>Log in of maak een account aan op <a href="%s">%s</a> en vul deze koppelcode in:</p>
			<p class="code">%s</p>
			<p>De code is geldig tot en met %s.</p>`,
		html.EscapeString(inviterName), html.EscapeString(childName), link, link, code, expires)

	textBody := fmt.Sprintf(`Hallo,

%s wil samen met jou de voortgang van %s in mAItje volgen.

Log in of maak een account aan op %s en vul deze koppelcode in:

    %s

De code is geldig tot en met %s.
`, inviterName, childName, link, code, expires)

	htmlBody := fmt.Sprintf(emailLayout, "Uitnodiging voor mAItje", htmlContent)
	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendWelcomeEmail sends a welcome email to a new parent
func (s *EmailService) SendWelcomeEmail(ctx context.Context, toEmail, toName string) error {
	if !s.IsEnabled() {
		log.Printf("Skipping email send (service disabled): welcome to %s", toEmail)
		return nil
	}

	subject := "Welkom bij mAItje!"
	htmlContent := fmt.Sprintf(`
			<p>Hallo %s,</p>
			<p>Fijn dat je er bent! Voeg je kind toe en ontdek samen de rekensommen, leesteksten en Engelse woordjes.</p>
			<p><a href="%s">Ga naar mAItje</a></p>`,
		html.EscapeString(toName), s.appBaseURL)

	textBody := fmt.Sprintf(`Hallo %s,

Fijn dat je er bent! Voeg je kind toe en ontdek samen de rekensommen, leesteksten en Engelse woordjes.

%s
`, toName, s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, fmt.Sprintf(emailLayout, subject, htmlContent), textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	if s.debug {
		log.Printf("[DEBUG] sendEmail: from=%s to=%s subject=%s", fromAddress, toEmail, subject)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] Message ID: %s", *result.MessageId)
	}
	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
