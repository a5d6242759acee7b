package inquiry_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"portfolio-catalog/internal/config"
	"portfolio-catalog/internal/domain"
	"portfolio-catalog/internal/logger"
	"portfolio-catalog/internal/mocks"
	"portfolio-catalog/internal/service/inquiry"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment:    "production",
		FromEmail:      "noreply@portfolio.test",
		InquiryToEmail: "artist@portfolio.test",
	}
}

func validInquiry() domain.Inquiry {
	return domain.Inquiry{
		ArtworkID:        "a1",
		ArtworkTitle:     "Blue <Hour>",
		ArtworkType:      "painting",
		ArtworkImage:     "https://cdn/a1.png",
		CustomerName:     "Sam Buyer",
		CustomerEmail:    "sam@example.com",
		CustomerComments: "Is it still available?",
		Timestamp:        "2026-03-01T10:00:00Z",
	}
}

func TestSubmit_Sends(t *testing.T) {
	sender := new(mocks.EmailSender)
	svc := inquiry.NewServiceWithSender(sender, nil, testConfig(), logger.Discard())

	sender.On("Send", mock.MatchedBy(func(p *resend.SendEmailRequest) bool {
		return len(p.To) == 1 && p.To[0] == "artist@portfolio.test" &&
			p.ReplyTo == "sam@example.com" &&
			p.Subject == "Purchase inquiry: Blue <Hour>" &&
			strings.Contains(p.Html, "Blue &lt;Hour&gt;") &&
			strings.Contains(p.Text, "Is it still available?")
	})).Return(&resend.SendEmailResponse{Id: "msg_123"}, nil).Once()

	id, err := svc.Submit(context.Background(), validInquiry(), "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "msg_123", id)
	sender.AssertExpectations(t)
}

func TestSubmit_Validation(t *testing.T) {
	sender := new(mocks.EmailSender)
	svc := inquiry.NewServiceWithSender(sender, nil, testConfig(), logger.Discard())

	tests := []struct {
		name   string
		mutate func(*domain.Inquiry)
	}{
		{"missing artwork", func(in *domain.Inquiry) { in.ArtworkID = "" }},
		{"missing title", func(in *domain.Inquiry) { in.ArtworkTitle = "  " }},
		{"missing name", func(in *domain.Inquiry) { in.CustomerName = "" }},
		{"bad email", func(in *domain.Inquiry) { in.CustomerEmail = "sam-at-example" }},
		{"long comments", func(in *domain.Inquiry) { in.CustomerComments = strings.Repeat("x", 5001) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInquiry()
			tt.mutate(&in)
			_, err := svc.Submit(context.Background(), in, "10.0.0.1")
			require.Error(t, err)
			assert.True(t, domain.IsValidationError(err))
		})
	}
	sender.AssertNotCalled(t, "Send", mock.Anything)
}

func TestSubmit_DeliveryFailure(t *testing.T) {
	sender := new(mocks.EmailSender)
	svc := inquiry.NewServiceWithSender(sender, nil, testConfig(), logger.Discard())

	sender.On("Send", mock.Anything).Return(nil, errors.New("403 domain not verified")).Once()

	_, err := svc.Submit(context.Background(), validInquiry(), "10.0.0.1")
	require.Error(t, err)
	assert.ErrorIs(t, err, inquiry.ErrDeliveryFailed)
	sender.AssertNumberOfCalls(t, "Send", 1)
}

func TestSubmit_RateLimit(t *testing.T) {
	sender := new(mocks.EmailSender)
	limiter := new(mocks.RateLimiter)
	svc := inquiry.NewServiceWithSender(sender, limiter, testConfig(), logger.Discard())
	ctx := context.Background()

	t.Run("over limit", func(t *testing.T) {
		limiter.On("Allow", ctx, "10.0.0.1").Return(false, nil).Once()
		_, err := svc.Submit(ctx, validInquiry(), "10.0.0.1")
		assert.ErrorIs(t, err, inquiry.ErrRateLimited)
	})

	t.Run("limiter down fails open", func(t *testing.T) {
		limiter.On("Allow", ctx, "10.0.0.2").Return(false, errors.New("redis: connection refused")).Once()
		sender.On("Send", mock.Anything).Return(&resend.SendEmailResponse{Id: "msg_456"}, nil).Once()

		id, err := svc.Submit(ctx, validInquiry(), "10.0.0.2")
		require.NoError(t, err)
		assert.Equal(t, "msg_456", id)
	})

	limiter.AssertExpectations(t)
	sender.AssertExpectations(t)
}

func TestSubmit_DevModeLogsOnly(t *testing.T) {
	cfg := testConfig()
	cfg.Environment = "development"
	cfg.ResendAPIKey = "re_test"
	svc := inquiry.NewService(cfg, nil, logger.Discard())

	in := validInquiry()
	in.Timestamp = ""
	id, err := svc.Submit(context.Background(), in, "127.0.0.1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "dev-"))
}
