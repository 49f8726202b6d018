package memstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/agora-social/agora/internal/apperr"
	"github.com/agora-social/agora/internal/models"
)

type voteRepo struct{ s *Store }

func keyOf(v *models.Vote) voteKey {
	return voteKey{targetType: v.TargetType, targetID: v.TargetID, voterID: v.VoterID}
}

func (r voteRepo) Get(ctx context.Context, targetType models.TargetType, targetID, voterID uuid.UUID) (*models.Vote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.d.votes[voteKey{targetType, targetID, voterID}]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (r voteRepo) Create(ctx context.Context, vote *models.Vote) error {
	defer r.s.lockWrite()()
	k := keyOf(vote)
	if _, ok := r.s.d.votes[k]; ok {
		return apperr.Conflict("vote already recorded")
	}
	if vote.ID == uuid.Nil {
		vote.ID = models.NewID()
	}
	if vote.CreatedAt.IsZero() {
		vote.CreatedAt = now()
	}
	vote.UpdatedAt = vote.CreatedAt
	r.s.d.votes[k] = *vote
	return nil
}

func (r voteRepo) Update(ctx context.Context, vote *models.Vote) error {
	defer r.s.lockWrite()()
	k := keyOf(vote)
	if _, ok := r.s.d.votes[k]; !ok {
		return apperr.NotFound("vote not found")
	}
	vote.UpdatedAt = now()
	r.s.d.votes[k] = *vote
	return nil
}

func (r voteRepo) Delete(ctx context.Context, vote *models.Vote) error {
	defer r.s.lockWrite()()
	delete(r.s.d.votes, keyOf(vote))
	return nil
}

func (r voteRepo) Directions(ctx context.Context, voterID uuid.UUID, targetType models.TargetType, ids []uuid.UUID) (map[uuid.UUID]models.Direction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[uuid.UUID]models.Direction)
	for _, id := range ids {
		if v, ok := r.s.d.votes[voteKey{targetType, id, voterID}]; ok {
			out[id] = v.Direction
		}
	}
	return out, nil
}
