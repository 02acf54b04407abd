package childprofiles

import (
	"context"
	"time"

	"github.com/kindlewood/studio/pkg/errcodes"
	"github.com/kindlewood/studio/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func dedupe(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// VerifyOwnership checks that every id names a child profile owned by
// principal. A single foreign or unknown id rejects the whole set.
func (svc *Service) VerifyOwnership(ctx context.Context, principal models.Principal, ids []int) error {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return errcodes.ValidationError(`"child_profile_ids" is required`)
	}

	count, err := svc.db.NewSelect().
		Model((*models.ChildProfile)(nil)).
		Where("cp.id IN (?)", bun.In(ids)).
		Where("cp.user_id = ?", principal.UserID).
		Count(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if count != len(ids) {
		return errcodes.NotFound("Child profile")
	}
	return nil
}

// ResolveNames maps child profile ids to display names. Unknown ids are
// left out.
func (svc *Service) ResolveNames(ctx context.Context, ids []int) (map[int]string, error) {
	names := make(map[int]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var profiles []*models.ChildProfile
	err := svc.db.NewSelect().
		Model(&profiles).
		Column("cp.id", "cp.name").
		Where("cp.id IN (?)", bun.In(dedupe(ids))).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	for _, p := range profiles {
		names[p.ID] = p.Name
	}
	return names, nil
}

func (svc *Service) ListChildProfiles(ctx context.Context, principal models.Principal) ([]*models.ChildProfile, error) {
	profiles := make([]*models.ChildProfile, 0)
	err := svc.db.NewSelect().
		Model(&profiles).
		Where("cp.user_id = ?", principal.UserID).
		Order("cp.name ASC", "cp.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return profiles, nil
}

type CreateChildProfileOptions struct {
	Name      string
	AvatarURL *string
}

func (svc *Service) CreateChildProfile(ctx context.Context, principal models.Principal, opts CreateChildProfileOptions) (*models.ChildProfile, error) {
	now := time.Now().UTC()
	profile := &models.ChildProfile{
		CreatedAt: now,
		UpdatedAt: now,
		UserID:    principal.UserID,
		Name:      opts.Name,
		AvatarURL: opts.AvatarURL,
	}
	_, err := svc.db.NewInsert().Model(profile).Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return profile, nil
}
