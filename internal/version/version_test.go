package version

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompose(t *testing.T) {
	tests := []struct {
		name            string
		rc, beta, alpha int
		want            string
	}{
		{name: "release", want: "0.5.2"},
		{name: "alpha", alpha: 3, want: "0.5.2-a.3"},
		{name: "beta over alpha", beta: 2, alpha: 3, want: "0.5.2-b.2"},
		{name: "rc over all", rc: 1, beta: 2, alpha: 3, want: "0.5.2-rc.1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Compose(0, 5, 2, tc.rc, tc.beta, tc.alpha))
		})
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "0.5.2", String())

	old := Version
	t.Cleanup(func() { Version = old })
	Version = "1.0.0-rc.2"
	assert.Equal(t, "1.0.0-rc.2", String())
}

func TestReleased(t *testing.T) {
	old := BuildDate
	t.Cleanup(func() { BuildDate = old })

	BuildDate = ""
	_, ok := Released()
	assert.False(t, ok)

	BuildDate = "yesterday"
	_, ok = Released()
	assert.False(t, ok)

	BuildDate = "2026-10-19T08:00:00Z"
	got, ok := Released()
	assert.True(t, ok)
	assert.True(t, got.Equal(time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)), got)
}
