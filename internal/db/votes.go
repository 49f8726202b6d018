package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/agora-social/agora/internal/models"
)

// VoteRepository provides vote ledger database operations
type VoteRepository struct {
	*Repository
}

// Get retrieves the voter's ledger row for a target
func (r *VoteRepository) Get(ctx context.Context, targetType models.TargetType, targetID, voterID uuid.UUID) (*models.Vote, error) {
	var vote models.Vote
	found, err := first(r.db.WithContext(ctx).
		Where("target_type = ? AND target_id = ? AND voter_id = ?", targetType, targetID, voterID), &vote)
	if err != nil || !found {
		return nil, err
	}
	return &vote, nil
}

// Create inserts a ledger row
func (r *VoteRepository) Create(ctx context.Context, vote *models.Vote) error {
	if vote.ID == uuid.Nil {
		vote.ID = models.NewID()
	}
	return createErr(r.db.WithContext(ctx).Create(vote).Error, "vote")
}

// Update changes the direction of a ledger row
func (r *VoteRepository) Update(ctx context.Context, vote *models.Vote) error {
	return r.db.WithContext(ctx).Model(vote).
		Update("direction", vote.Direction).Error
}

// Delete removes a ledger row
func (r *VoteRepository) Delete(ctx context.Context, vote *models.Vote) error {
	return r.db.WithContext(ctx).Delete(&models.Vote{}, "id = ?", vote.ID).Error
}

// Directions returns the voter's stance on each target in ids
func (r *VoteRepository) Directions(ctx context.Context, voterID uuid.UUID, targetType models.TargetType, ids []uuid.UUID) (map[uuid.UUID]models.Direction, error) {
	out := make(map[uuid.UUID]models.Direction, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var votes []models.Vote
	if err := r.db.WithContext(ctx).
		Select("target_id", "direction").
		Where("voter_id = ? AND target_type = ? AND target_id IN ?", voterID, targetType, ids).
		Find(&votes).Error; err != nil {
		return nil, err
	}
	for _, v := range votes {
		out[v.TargetID] = v.Direction
	}
	return out, nil
}
