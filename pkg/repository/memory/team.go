package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/domain/model"
	"github.com/secmon-lab/vatracker/pkg/domain/types"
)

type teamRepository struct {
	mu   sync.RWMutex
	rels map[model.TeamRelationshipID]*model.TeamRelationship
}

func newTeamRepository() *teamRepository {
	return &teamRepository{
		rels: make(map[model.TeamRelationshipID]*model.TeamRelationship),
	}
}

func copyTeamRelationship(rel *model.TeamRelationship) *model.TeamRelationship {
	copied := *rel
	return &copied
}

func (r *teamRepository) Create(ctx context.Context, rel *model.TeamRelationship) (*model.TeamRelationship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := model.NewTeamRelationshipID(rel.BossID, rel.VAID)
	if existing, ok := r.rels[id]; ok && existing.IsActive() {
		return nil, goerr.Wrap(ErrAlreadyExists, "team relationship already active",
			goerr.V("boss_id", rel.BossID), goerr.V("va_id", rel.VAID))
	}

	now := time.Now().UTC()
	created := copyTeamRelationship(rel)
	created.ID = id
	if created.Status == "" {
		created.Status = types.TeamStatusActive
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	r.rels[created.ID] = created
	return copyTeamRelationship(created), nil
}

func (r *teamRepository) ListActiveByBoss(ctx context.Context, bossID string) ([]*model.TeamRelationship, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.TeamRelationship, 0)
	for _, rel := range r.rels {
		if rel.BossID == bossID && rel.IsActive() {
			result = append(result, copyTeamRelationship(rel))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *teamRepository) FindActive(ctx context.Context, bossID, vaID string) (*model.TeamRelationship, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rel := range r.rels {
		if rel.BossID == bossID && rel.VAID == vaID && rel.IsActive() {
			return copyTeamRelationship(rel), nil
		}
	}
	return nil, nil
}

func (r *teamRepository) FindActiveByVA(ctx context.Context, vaID string) (*model.TeamRelationship, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *model.TeamRelationship
	for _, rel := range r.rels {
		if rel.VAID != vaID || !rel.IsActive() {
			continue
		}
		// Oldest relationship wins so the answer is stable across calls
		if found == nil || rel.CreatedAt.Before(found.CreatedAt) {
			found = rel
		}
	}
	if found == nil {
		return nil, nil
	}
	return copyTeamRelationship(found), nil
}

func (r *teamRepository) UpdateStatus(ctx context.Context, id model.TeamRelationshipID, status types.TeamStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rel, ok := r.rels[id]
	if !ok {
		return goerr.Wrap(ErrNotFound, "team relationship not found", goerr.V("id", id))
	}

	updated := copyTeamRelationship(rel)
	updated.Status = status
	updated.UpdatedAt = time.Now().UTC()
	r.rels[id] = updated
	return nil
}
