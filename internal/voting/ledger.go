package voting

import "github.com/agora-social/agora/internal/models"

// Transition returns the voter's direction after casting cast while holding
// prev. Casting the held direction again retracts it; casting the opposite
// direction switches in one step.
func Transition(prev, cast models.Direction) models.Direction {
	if prev == cast {
		return models.DirectionNone
	}
	return cast
}

// counterDeltas returns how the up and down counters move for prev -> next.
func counterDeltas(prev, next models.Direction) (up, down int) {
	switch prev {
	case models.DirectionUp:
		up--
	case models.DirectionDown:
		down--
	}
	switch next {
	case models.DirectionUp:
		up++
	case models.DirectionDown:
		down++
	}
	return up, down
}

// Result is the outcome of one vote call.
type Result struct {
	VoteScore int  `json:"vote_score"`
	Upvoted   bool `json:"upvoted"`
	Downvoted bool `json:"downvoted"`
	// KarmaDelta is the change applied to the content author.
	KarmaDelta int `json:"karma_delta"`
}

func newResult(up, down int, next models.Direction, delta int) *Result {
	return &Result{
		VoteScore:  up - down,
		Upvoted:    next == models.DirectionUp,
		Downvoted:  next == models.DirectionDown,
		KarmaDelta: delta,
	}
}
