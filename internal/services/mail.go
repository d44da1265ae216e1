package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/spendtrail/spendtrail/internal/models"
)

// Mailer delivers verification and password-reset links.
type Mailer interface {
	SendTokenEmail(ctx context.Context, email string, purpose models.TokenPurpose, token string) error
}

// AWSSESMailer sends emails using AWS SES
type AWSSESMailer struct {
	sesClient   *ses.Client
	fromAddress string
	baseURL     string
	logger      *slog.Logger
}

// NewAWSSESMailer creates a new AWS SES mailer
func NewAWSSESMailer(region, fromAddress, baseURL string, logger *slog.Logger) (*AWSSESMailer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESMailer{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		baseURL:     baseURL,
		logger:      logger,
	}, nil
}

// SendTokenEmail sends the email for the given token purpose. The link points
// at the API endpoint that redeems the token.
func (s *AWSSESMailer) SendTokenEmail(ctx context.Context, email string, purpose models.TokenPurpose, token string) error {
	var link, subject, action string
	switch purpose {
	case models.PurposeVerifyEmail:
		link = fmt.Sprintf("%s/api/v1/users/verify-email?token=%s", s.baseURL, token)
		subject = "Verify your email address"
		action = "verify your email address"
	case models.PurposePasswordReset:
		link = fmt.Sprintf("%s/api/v1/users/reset-password?token=%s", s.baseURL, token)
		subject = "Reset your password"
		action = "reset your password"
	default:
		return fmt.Errorf("unknown token purpose %q", purpose)
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .button { display: inline-block; background-color: #0066cc; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; margin: 20px 0; }
        .footer { color: #666; font-size: 12px; margin-top: 20px; padding-top: 20px; border-top: 1px solid #eee; }
    </style>
</head>
<body>
    <div class="container">
        <p>Please click the link below to %s:</p>
        <p><a href="%s" class="button">%s</a></p>
        <p>Or copy and paste this link in your browser:<br>
        <code>%s</code></p>
        <p>This link will expire in 1 hour. If you did not request this, you can ignore this email.</p>
        <div class="footer">
            <p>This is an automated message. Please do not reply to this email.</p>
        </div>
    </div>
</body>
</html>
`, action, link, subject, link)

	textBody := fmt.Sprintf(`Please use the link below to %s:

%s

This link will expire in 1 hour. If you did not request this, you can ignore this email.

This is an automated message. Please do not reply to this email.
`, action, link)

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{email},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data: aws.String(htmlBody),
				},
				Text: &types.Content{
					Data: aws.String(textBody),
				},
			},
		},
	}

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send email via SES",
			slog.String("purpose", string(purpose)),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("email sent",
		slog.String("purpose", string(purpose)),
		slog.String("message_id", *result.MessageId))

	return nil
}
