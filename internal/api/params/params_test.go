package params

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agora-social/agora/internal/apperr"
)

type sample struct {
	ID    uuid.UUID `json:"id"`
	Limit int       `json:"limit"`
}

func TestBind(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name    string
		raw     string
		want    sample
		wantErr bool
	}{
		{"empty", ``, sample{}, false},
		{"null", `null`, sample{}, false},
		{"object", `{"id":"` + id.String() + `","limit":5}`, sample{ID: id, Limit: 5}, false},
		{"positional", `["x"]`, sample{}, true},
		{"unknown field", `{"nope":1}`, sample{}, true},
		{"bad uuid", `{"id":"zzz"}`, sample{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got sample
			err := Bind(json.RawMessage(tt.raw), &got)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequireID(t *testing.T) {
	assert.NoError(t, RequireID("id", uuid.New()))
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(RequireID("id", uuid.Nil)))
}
