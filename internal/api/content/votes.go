// Package content serves the post, comment and vote methods.
package content

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agora-social/agora/internal/api/params"
	"github.com/agora-social/agora/internal/auth"
	"github.com/agora-social/agora/internal/models"
	"github.com/agora-social/agora/internal/voting"
)

// VotesAPI provides voting methods
type VotesAPI struct {
	votes *voting.Service
}

// NewVotesAPI creates a new votes API
func NewVotesAPI(votes *voting.Service) *VotesAPI {
	return &VotesAPI{votes: votes}
}

type applyVoteParams struct {
	TargetType models.TargetType `json:"target_type"`
	TargetID   uuid.UUID         `json:"target_id"`
	Direction  models.Direction  `json:"direction"`
}

// Apply handles votes.apply. Casting the held direction again retracts it.
func (a *VotesAPI) Apply(c *gin.Context, raw json.RawMessage) (interface{}, error) {
	user, err := auth.RequireUser(c)
	if err != nil {
		return nil, err
	}

	var p applyVoteParams
	if err := params.Bind(raw, &p); err != nil {
		return nil, err
	}
	if err := params.RequireID("target_id", p.TargetID); err != nil {
		return nil, err
	}

	return a.votes.ApplyVote(c.Request.Context(), p.TargetType, p.TargetID, user.ID, p.Direction)
}
