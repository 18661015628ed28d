package usecase

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/domain/model"
	"github.com/secmon-lab/vatracker/pkg/domain/types"
	"github.com/secmon-lab/vatracker/pkg/utils/errutil"
	"github.com/secmon-lab/vatracker/pkg/utils/logging"
)

// ContactInput is the user supplied part of a new contact
type ContactInput struct {
	Name        string
	LinkedInURL string
	Notes       string
	Priority    string
	ImageURLs   []string
}

// ContactUseCase manages contacts flagged by VAs for follow-up
type ContactUseCase struct {
	root *UseCases
}

// AddContact validates and stores a contact, then notifies the owning boss.
// Name, LinkedIn URL and notes must be non-blank after trimming, and every
// image URL must come from the user's own uploads; nothing is written
// otherwise.
func (uc *ContactUseCase) AddContact(ctx context.Context, userID string, input ContactInput) (*model.Contact, error) {
	name := strings.TrimSpace(input.Name)
	linkedIn := strings.TrimSpace(input.LinkedInURL)
	notes := strings.TrimSpace(input.Notes)

	switch {
	case name == "":
		return nil, validationErr("contact name is required")
	case linkedIn == "":
		return nil, validationErr("LinkedIn URL is required")
	case notes == "":
		return nil, validationErr("notes are required")
	}

	priority, err := types.ParsePriority(strings.TrimSpace(input.Priority))
	if err != nil {
		return nil, goerr.Wrap(err, "invalid contact priority", goerr.T(TagValidation))
	}

	images := make([]string, 0, len(input.ImageURLs))
	for _, u := range input.ImageURLs {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if uc.root.images == nil || !uc.root.images.Owns(u, userID) {
			return nil, validationErr("image was not uploaded by this user", goerr.V("url", u), goerr.V(UserIDKey, userID))
		}
		images = append(images, u)
	}

	now := uc.root.now()
	contact := &model.Contact{
		ID:          model.NewContactID(),
		UserID:      userID,
		Name:        name,
		LinkedInURL: linkedIn,
		Notes:       notes,
		Priority:    priority,
		ImageURLs:   images,
		DateAdded:   uc.root.Today(ctx),
		CreatedAt:   now,
	}

	created, err := uc.root.repo.Contact().Create(ctx, contact)
	if err != nil {
		return nil, storeErr(err, "failed to create contact", nil, goerr.V(UserIDKey, userID))
	}

	vaName := ""
	if profile, err := uc.root.repo.Profile().Get(ctx, userID); err == nil {
		vaName = profile.DisplayName()
	}
	uc.root.publisher.Publish(ctx, model.Event{
		Type: model.EventContactFlagged,
		ContactFlagged: &model.ContactFlaggedEvent{
			Contact: created,
			VAName:  vaName,
		},
	})

	logging.From(ctx).Info("contact flagged",
		slog.String("contact_id", created.ID.String()),
		slog.String("priority", created.Priority.String()))
	return created, nil
}

// RemoveContact deletes a contact owned by requesterID. A contact of another
// user is reported as not found. Screenshots of the requester are removed
// best-effort.
func (uc *ContactUseCase) RemoveContact(ctx context.Context, id model.ContactID, requesterID string) error {
	deleted, err := uc.root.repo.Contact().DeleteOwned(ctx, id, requesterID)
	if err != nil {
		return storeErr(err, "failed to delete contact", ErrContactNotFound,
			goerr.V(ContactIDKey, id), goerr.V(UserIDKey, requesterID))
	}

	if uc.root.images != nil {
		for _, u := range deleted.ImageURLs {
			if !uc.root.images.Owns(u, requesterID) {
				logging.From(ctx).Warn("skip deleting image of another user",
					slog.String("contact_id", id.String()), slog.String("url", u))
				continue
			}
			if err := uc.root.images.Delete(ctx, u); err != nil {
				errutil.Handle(ctx, goerr.Wrap(err, "failed to delete contact image",
					goerr.V(ContactIDKey, id), goerr.V("url", u)), "orphaned contact image")
			}
		}
	}
	return nil
}

// UploadImage stores a screenshot for a contact that is about to be added and
// returns its URL
func (uc *ContactUseCase) UploadImage(ctx context.Context, userID string, contentType string, r io.Reader) (string, error) {
	if uc.root.images == nil {
		return "", goerr.New("image store is not configured", goerr.T(TagStore))
	}
	u, err := uc.root.images.Upload(ctx, userID, contentType, r)
	if err != nil {
		return "", goerr.Wrap(err, "failed to upload image", goerr.V(UserIDKey, userID), goerr.V("content_type", contentType))
	}
	return u, nil
}

// ListForUser returns the user's own contacts grouped by priority
func (uc *ContactUseCase) ListForUser(ctx context.Context, userID string) ([]model.PriorityGroup, error) {
	contacts, err := uc.root.repo.Contact().ListByUsers(ctx, []string{userID})
	if err != nil {
		return nil, storeErr(err, "failed to list contacts", nil, goerr.V(UserIDKey, userID))
	}
	return model.GroupByPriority(contacts), nil
}

// ListForBoss returns the contacts of every active VA of the boss grouped by
// priority, newest first within a group, each labelled with the VA's name
func (uc *ContactUseCase) ListForBoss(ctx context.Context, bossID string) ([]model.PriorityGroup, error) {
	rels, err := uc.root.Team.ListTeam(ctx, bossID)
	if err != nil {
		return nil, err
	}
	if len(rels) == 0 {
		return model.GroupByPriority(nil), nil
	}

	vaIDs := make([]string, 0, len(rels))
	names := make(map[string]string, len(rels))
	for _, rel := range rels {
		vaIDs = append(vaIDs, rel.VAID)
		if profile, err := uc.root.repo.Profile().Get(ctx, rel.VAID); err == nil {
			names[rel.VAID] = profile.DisplayName()
		}
	}

	contacts, err := uc.root.repo.Contact().ListByUsers(ctx, vaIDs)
	if err != nil {
		return nil, storeErr(err, "failed to list team contacts", nil, goerr.V(BossIDKey, bossID))
	}
	for _, c := range contacts {
		c.OwnerName = names[c.UserID]
	}
	return model.GroupByPriority(contacts), nil
}
