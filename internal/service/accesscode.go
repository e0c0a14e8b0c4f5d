package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"

	"workorders/internal/model"
)

const (
	SecretCodeLength = 10
	secretAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// Duration keys as sent by the admin code form.
const (
	DurationThirtyMinutes = "thirtyMinutes"
	DurationOneHour       = "oneHour"
	DurationFiveHours     = "fifeHours"
	DurationTwelveHours   = "twelveHours"
	DurationOneDay        = "twentyForHours"
	DurationOneWeek       = "oneWeek"
	DurationOneMonth      = "oneMonth"
	DurationThreeMonths   = "threeMonths"
	DurationSixMonths     = "sixMonths"
	DurationNineMonths    = "nineMonths"
	DurationOneYear       = "oneYear"
	DurationTwoYears      = "twoYears"
)

var fixedDurations = map[string]time.Duration{
	DurationThirtyMinutes: 30 * time.Minute,
	DurationOneHour:       time.Hour,
	DurationFiveHours:     5 * time.Hour,
	DurationTwelveHours:   12 * time.Hour,
	DurationOneDay:        24 * time.Hour,
	DurationOneWeek:       7 * 24 * time.Hour,
	// a flat 30 days, unlike the longer spans below which move the calendar month
	DurationOneMonth: 30 * 24 * time.Hour,
}

var monthDurations = map[string]int{
	DurationThreeMonths: 3,
	DurationSixMonths:   6,
	DurationNineMonths:  9,
	DurationOneYear:     12,
	DurationTwoYears:    24,
}

// Expiration returns when a code issued at issued with the given duration key expires.
// Unknown keys expire at issuance.
func Expiration(issued time.Time, key string) time.Time {
	if d, ok := fixedDurations[key]; ok {
		return issued.Add(d)
	}
	if m, ok := monthDurations[key]; ok {
		return issued.AddDate(0, m, 0)
	}
	return issued
}

// GenerateSecretCode returns n characters drawn uniformly from A-Z, a-z and 0-9.
func GenerateSecretCode(n int) (string, error) {
	max := big.NewInt(int64(len(secretAlphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = secretAlphabet[idx.Int64()]
	}
	return string(b), nil
}

// CodeMailer hands a freshly issued code to its recipient.
type CodeMailer interface {
	SendAccessCode(c *model.AccessCode) error
}

type AccessCodeService struct {
	codes  AccessCodeStore
	mailer CodeMailer
	now    func() time.Time
}

// NewAccessCodeService builds the issuer. mailer may be nil.
func NewAccessCodeService(codes AccessCodeStore, mailer CodeMailer) *AccessCodeService {
	return &AccessCodeService{codes: codes, mailer: mailer, now: time.Now}
}

type NewAccessCode struct {
	CustomName     string
	Email          string
	ContractNumber string
	Role           string
	Duration       string
}

// CreateCode issues an onboarding code. It returns nil without an error when the request is
// rejected: the placeholder role or any empty field.
func (s *AccessCodeService) CreateCode(ctx context.Context, in NewAccessCode) (*model.AccessCode, error) {
	if in.Role == model.RoleHolder {
		return nil, nil
	}
	if in.CustomName == "" || in.Email == "" || in.ContractNumber == "" || in.Role == "" || in.Duration == "" {
		return nil, nil
	}

	secret, err := GenerateSecretCode(SecretCodeLength)
	if err != nil {
		return nil, fmt.Errorf("generate secret code: %w", err)
	}

	issued := s.now()
	c := &model.AccessCode{
		ID:             uuid.NewString(),
		CustomName:     in.CustomName,
		Email:          in.Email,
		ContractNumber: in.ContractNumber,
		Role:           in.Role,
		SecretCode:     secret,
		ExpirationDate: Expiration(issued, in.Duration),
		Used:           false,
		CreatedAt:      issued,
	}
	if err := s.codes.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("store access code: %w", err)
	}

	if s.mailer != nil {
		if err := s.mailer.SendAccessCode(c); err != nil {
			slog.Error("failed to mail access code", "email", c.Email, "error", err)
		}
	}
	return c, nil
}

func (s *AccessCodeService) ListCodes(ctx context.Context) ([]model.AccessCode, error) {
	return s.codes.List(ctx)
}
