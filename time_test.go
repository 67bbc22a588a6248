package auth_test

import (
	"testing"
	"time"

	auth "github.com/goentry/go-auth"
	"github.com/stretchr/testify/assert"
)

func TestIsWithinThresholdPeriod(t *testing.T) {
	tests := []struct {
		name    string
		t       time.Time
		pattern string
		want    bool
		wantErr bool
	}{
		{
			name:    "recent time within window",
			t:       time.Now().Add(-time.Hour),
			pattern: "24h",
			want:    true,
		},
		{
			name:    "old time outside window",
			t:       time.Now().Add(-48 * time.Hour),
			pattern: "24h",
			want:    false,
		},
		{
			name:    "invalid duration pattern",
			t:       time.Now(),
			pattern: "not-a-duration",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := auth.IsWithinThresholdPeriod(tt.t, tt.pattern)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsOutsideThresholdPeriod(t *testing.T) {
	outside, err := auth.IsOutsideThresholdPeriod(time.Now().Add(-48*time.Hour), "24h")
	assert.NoError(t, err)
	assert.True(t, outside)

	outside, err = auth.IsOutsideThresholdPeriod(time.Now().Add(-time.Minute), "24h")
	assert.NoError(t, err)
	assert.False(t, outside)

	_, err = auth.IsOutsideThresholdPeriod(time.Now(), "bogus")
	assert.Error(t, err)
}
