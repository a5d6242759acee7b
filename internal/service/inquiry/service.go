package inquiry

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/resend/resend-go/v2"

	"portfolio-catalog/internal/config"
	"portfolio-catalog/internal/domain"
	"portfolio-catalog/internal/metrics"
	"portfolio-catalog/internal/validation"
)

//go:embed templates/*.html
var templateFS embed.FS

var inquiryTemplate = template.Must(template.ParseFS(templateFS, "templates/inquiry.html"))

var (
	ErrRateLimited    = errors.New("too many inquiries, please try again later")
	ErrDeliveryFailed = errors.New("failed to send inquiry")
)

var inquiryValidator = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return v
}

// EmailSender is the part of the Resend client used here.
type EmailSender interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type Service interface {
	// Submit validates and emails one inquiry and returns the provider message id.
	// A single delivery attempt is made.
	Submit(ctx context.Context, in domain.Inquiry, clientIP string) (string, error)
}

type service struct {
	sender    EmailSender
	limiter   RateLimiter
	fromEmail string
	toEmail   string
	isDev     bool
	now       func() time.Time
	log       *slog.Logger
}

// NewService sends through Resend. Without an API key, or in development, messages
// are logged instead. limiter may be nil.
func NewService(cfg *config.Config, limiter RateLimiter, log *slog.Logger) Service {
	var sender EmailSender
	if cfg.ResendAPIKey != "" && !cfg.IsDevelopment() {
		sender = resend.NewClient(cfg.ResendAPIKey).Emails
	}
	return newService(sender, limiter, cfg, log)
}

func NewServiceWithSender(sender EmailSender, limiter RateLimiter, cfg *config.Config, log *slog.Logger) Service {
	return newService(sender, limiter, cfg, log)
}

func newService(sender EmailSender, limiter RateLimiter, cfg *config.Config, log *slog.Logger) *service {
	to := cfg.InquiryToEmail
	if to == "" {
		to = cfg.FromEmail
	}
	return &service{
		sender:    sender,
		limiter:   limiter,
		fromEmail: cfg.FromEmail,
		toEmail:   to,
		isDev:     sender == nil,
		now:       time.Now,
		log:       log.With("component", "inquiry"),
	}
}

func (s *service) Submit(ctx context.Context, in domain.Inquiry, clientIP string) (string, error) {
	in = normalize(in)
	if err := validate(in); err != nil {
		metrics.Inquiries.WithLabelValues("invalid").Inc()
		return "", err
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, clientIP)
		if err != nil {
			s.log.Warn("rate limiter unavailable, allowing inquiry", "ip", clientIP, "error", err)
		} else if !allowed {
			metrics.Inquiries.WithLabelValues("rate_limited").Inc()
			s.log.Warn("inquiry rate limit exceeded", "ip", clientIP)
			return "", ErrRateLimited
		}
	}

	if in.Timestamp == "" {
		in.Timestamp = s.now().UTC().Format(time.RFC3339)
	}

	subject := fmt.Sprintf("Purchase inquiry: %s", in.ArtworkTitle)
	var html bytes.Buffer
	if err := inquiryTemplate.Execute(&html, in); err != nil {
		return "", fmt.Errorf("failed to render inquiry email: %w", err)
	}

	if s.isDev {
		id := "dev-" + uuid.New().String()
		metrics.Inquiries.WithLabelValues("dev").Inc()
		s.log.Info("inquiry email (dev mode)", "id", id, "to", s.toEmail, "reply_to", in.CustomerEmail, "subject", subject, "artwork_id", in.ArtworkID)
		return id, nil
	}

	resp, err := s.sender.Send(&resend.SendEmailRequest{
		From:    fmt.Sprintf("Portfolio <%s>", s.fromEmail),
		To:      []string{s.toEmail},
		ReplyTo: in.CustomerEmail,
		Subject: subject,
		Html:    html.String(),
		Text:    plainText(in),
	})
	if err != nil {
		metrics.Inquiries.WithLabelValues("error").Inc()
		s.log.Error("failed to send inquiry email", "artwork_id", in.ArtworkID, "error", err)
		return "", fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	metrics.Inquiries.WithLabelValues("sent").Inc()
	s.log.Info("inquiry email sent", "id", resp.Id, "artwork_id", in.ArtworkID)
	return resp.Id, nil
}

func normalize(in domain.Inquiry) domain.Inquiry {
	in.ArtworkID = strings.TrimSpace(in.ArtworkID)
	in.ArtworkTitle = strings.TrimSpace(in.ArtworkTitle)
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerEmail = strings.TrimSpace(in.CustomerEmail)
	in.CustomerComments = strings.TrimSpace(in.CustomerComments)
	return in
}

func validate(in domain.Inquiry) error {
	if err := inquiryValidator.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return err
		}
		fe := fieldErrs[0]
		switch fe.Tag() {
		case "required":
			return domain.NewValidationError("%s is required", fe.Field())
		case "max":
			return domain.NewValidationError("%s is too long (max %s characters)", fe.Field(), fe.Param())
		}
		return domain.NewValidationError("%s is invalid", fe.Field())
	}
	return validation.ValidateEmail(in.CustomerEmail)
}

func plainText(in domain.Inquiry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New purchase inquiry (%s)\n\n", in.Timestamp)
	fmt.Fprintf(&b, "Artwork: %s (%s)\n", in.ArtworkTitle, in.ArtworkID)
	if in.ArtworkType != "" {
		fmt.Fprintf(&b, "Type: %s\n", in.ArtworkType)
	}
	if in.ArtworkImage != "" {
		fmt.Fprintf(&b, "Image: %s\n", in.ArtworkImage)
	}
	fmt.Fprintf(&b, "\nCustomer: %s <%s>\n", in.CustomerName, in.CustomerEmail)
	if in.CustomerComments != "" {
		fmt.Fprintf(&b, "\n%s\n", in.CustomerComments)
	}
	return b.String()
}
