package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/enumm/identity/internal/models"
	apperrors "github.com/enumm/identity/pkg/errors"
)

// ProfileView is the API projection of a talent profile, including how
// complete it is and which fields are still blank.
type ProfileView struct {
	Email              string   `json:"email"`
	Transcript         string   `json:"transcript"`
	StatementOfPurpose string   `json:"statement_of_purpose"`
	Completeness       int      `json:"completeness"`
	MissingFields      []string `json:"missing_fields"`
}

// ProfileUpdate carries a partial update. Nil fields keep their stored value;
// a non-nil empty string clears the field.
type ProfileUpdate struct {
	Transcript         *string `json:"transcript"`
	StatementOfPurpose *string `json:"statement_of_purpose"`
}

// ProfileService manages the talent profile attached to each account. A
// profile row is created lazily on the first update; reads of an account that
// never saved anything return an empty view.
type ProfileService struct {
	db *gorm.DB
}

// NewProfileService constructs a profile service.
func NewProfileService(db *gorm.DB) (*ProfileService, error) {
	if db == nil {
		return nil, errors.New("profile service: db is required")
	}
	return &ProfileService{db: db}, nil
}

// Get returns the profile view for the account identified by email.
func (s *ProfileService) Get(ctx context.Context, email string) (*ProfileView, error) {
	user, err := s.lookupUser(ctx, email)
	if err != nil {
		return nil, err
	}

	var profile models.TalentProfile
	err = s.db.WithContext(ctx).Where("user_id = ?", user.ID).Take(&profile).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(err, "profile: lookup failed")
	}

	return buildProfileView(user.Email, &profile), nil
}

// Update applies a partial update and returns the resulting view.
func (s *ProfileService) Update(ctx context.Context, email string, update ProfileUpdate) (*ProfileView, error) {
	user, err := s.lookupUser(ctx, email)
	if err != nil {
		return nil, err
	}

	var profile models.TalentProfile
	err = s.db.WithContext(ctx).
		Where(models.TalentProfile{UserID: user.ID}).
		FirstOrCreate(&profile).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "profile: load or create failed")
	}

	if update.Transcript != nil {
		profile.Transcript = *update.Transcript
	}
	if update.StatementOfPurpose != nil {
		profile.StatementOfPurpose = *update.StatementOfPurpose
	}

	if err := s.db.WithContext(ctx).Save(&profile).Error; err != nil {
		return nil, apperrors.Wrap(err, "profile: save failed")
	}

	return buildProfileView(user.Email, &profile), nil
}

func (s *ProfileService) lookupUser(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, apperrors.ErrNotAuthenticated
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotAuthenticated
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "profile: user lookup failed")
	}

	return &user, nil
}

func buildProfileView(email string, profile *models.TalentProfile) *ProfileView {
	view := &ProfileView{
		Email:              email,
		Transcript:         profile.Transcript,
		StatementOfPurpose: profile.StatementOfPurpose,
		MissingFields:      []string{},
	}

	fields := []struct {
		name  string
		value string
	}{
		{"transcript", profile.Transcript},
		{"statement_of_purpose", profile.StatementOfPurpose},
	}

	filled := 0
	for _, field := range fields {
		if strings.TrimSpace(field.value) != "" {
			filled++
			continue
		}
		view.MissingFields = append(view.MissingFields, field.name)
	}

	view.Completeness = filled * 100 / len(fields)

	return view
}
