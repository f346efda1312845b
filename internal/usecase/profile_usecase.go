package usecase

import (
	"context"
	"errors"
	"fmt"

	"sandy/internal/domain/profile"
	"sandy/internal/repository"

	"github.com/google/uuid"
)

// ProfileInput holds the writable survey fields. Nil fields are left as they
// are on update.
type ProfileInput struct {
	PhysicalNeeds            *[]string
	EnergyLevel              *string
	MainDevice               *string
	AccessibilityAdaptations *[]string
	DailyTaskChallenges      *[]string
	SendPhotos               *string
	ConditionName            *string
	HelpNeeded               *string
	ShareExperiences         *string
	OtherNeedsSoon           *string
	Bio                      *string
	Avatar                   *string
	Location                 *string
}

func (in ProfileInput) apply(p *profile.UserProfile) {
	setSlice(&p.PhysicalNeeds, in.PhysicalNeeds)
	setString(&p.EnergyLevel, in.EnergyLevel)
	setString(&p.MainDevice, in.MainDevice)
	setSlice(&p.AccessibilityAdaptations, in.AccessibilityAdaptations)
	setSlice(&p.DailyTaskChallenges, in.DailyTaskChallenges)
	setString(&p.SendPhotos, in.SendPhotos)
	setString(&p.ConditionName, in.ConditionName)
	setString(&p.HelpNeeded, in.HelpNeeded)
	setString(&p.ShareExperiences, in.ShareExperiences)
	setString(&p.OtherNeedsSoon, in.OtherNeedsSoon)
	setString(&p.Bio, in.Bio)
	setString(&p.Location, in.Location)
	if in.Avatar != nil {
		if *in.Avatar == "" {
			p.Avatar = nil
		} else {
			v := *in.Avatar
			p.Avatar = &v
		}
	}
}

// ProfileDocumentStore is the profile_data half of PostgresService.
type ProfileDocumentStore interface {
	GetUserProfile(ctx context.Context, userID uuid.UUID) (profile.Document, error)
	SaveUserProfile(ctx context.Context, userID uuid.UUID, doc profile.Document) error
	DeleteUserProfile(ctx context.Context, userID uuid.UUID) (bool, error)
	GetAllUserProfiles(ctx context.Context) ([]profile.Document, error)
}

type ProfileUsecase interface {
	List(ctx context.Context, userID uuid.UUID) ([]profile.UserProfile, error)
	Get(ctx context.Context, userID, id uuid.UUID) (profile.UserProfile, error)
	Create(ctx context.Context, userID uuid.UUID, in ProfileInput) (profile.UserProfile, error)
	Update(ctx context.Context, userID, id uuid.UUID, in ProfileInput) (profile.UserProfile, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error

	GetDocument(ctx context.Context, userID uuid.UUID) (profile.Document, error)
	SaveDocument(ctx context.Context, userID uuid.UUID, doc profile.Document) (profile.Document, error)
	DeleteDocument(ctx context.Context, userID uuid.UUID) error
	ListDocuments(ctx context.Context) ([]profile.Document, error)
}

type Profile struct {
	repo repository.ProfileRepository
	docs ProfileDocumentStore
}

func NewProfileUsecase(repo repository.ProfileRepository, docs ProfileDocumentStore) *Profile {
	return &Profile{repo: repo, docs: docs}
}

func (u *Profile) List(ctx context.Context, userID uuid.UUID) ([]profile.UserProfile, error) {
	items, err := u.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return items, nil
}

func (u *Profile) Get(ctx context.Context, userID, id uuid.UUID) (profile.UserProfile, error) {
	p, err := u.repo.GetByID(ctx, userID, id)
	if err != nil {
		return profile.UserProfile{}, profileRepoError(err)
	}
	return p, nil
}

// Create always assigns the caller as owner; a second profile is a conflict.
func (u *Profile) Create(ctx context.Context, userID uuid.UUID, in ProfileInput) (profile.UserProfile, error) {
	p := profile.UserProfile{UserID: userID}
	in.apply(&p)
	if err := u.repo.Create(ctx, &p); err != nil {
		return profile.UserProfile{}, profileRepoError(err)
	}
	return p, nil
}

func (u *Profile) Update(ctx context.Context, userID, id uuid.UUID, in ProfileInput) (profile.UserProfile, error) {
	p, err := u.repo.GetByID(ctx, userID, id)
	if err != nil {
		return profile.UserProfile{}, profileRepoError(err)
	}
	in.apply(&p)
	if err := u.repo.Update(ctx, &p); err != nil {
		return profile.UserProfile{}, profileRepoError(err)
	}
	return p, nil
}

func (u *Profile) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := u.repo.Delete(ctx, userID, id); err != nil {
		return profileRepoError(err)
	}
	return nil
}

func (u *Profile) GetDocument(ctx context.Context, userID uuid.UUID) (profile.Document, error) {
	doc, err := u.docs.GetUserProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return nil, profile.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return doc, nil
}

func (u *Profile) SaveDocument(ctx context.Context, userID uuid.UUID, doc profile.Document) (profile.Document, error) {
	if doc == nil {
		return nil, ErrInvalidInput
	}
	if err := u.docs.SaveUserProfile(ctx, userID, doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return u.GetDocument(ctx, userID)
}

func (u *Profile) DeleteDocument(ctx context.Context, userID uuid.UUID) error {
	ok, err := u.docs.DeleteUserProfile(ctx, userID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if !ok {
		return profile.ErrNotFound
	}
	return nil
}

func (u *Profile) ListDocuments(ctx context.Context) ([]profile.Document, error) {
	docs, err := u.docs.GetAllUserProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return docs, nil
}

func profileRepoError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return profile.ErrNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return profile.ErrAlreadyExists
	default:
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setSlice(dst *[]string, v *[]string) {
	if v == nil {
		return
	}
	if *v == nil {
		*dst = []string{}
		return
	}
	*dst = append([]string(nil), (*v)...)
}
