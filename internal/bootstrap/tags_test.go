package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-bootstrap/internal/domain"
)

func TestNormalizeTags_SavesOnlyChanged(t *testing.T) {
	h := newHarness(t, testOptions())
	h.mem.AddTag(domain.Tag{Name: "  VPN ", Normalized: ""})
	h.mem.AddTag(domain.Tag{Name: "printer", Normalized: "printer"})
	h.mem.AddTag(domain.Tag{Name: "Café", Normalized: "cafe"})

	require.NoError(t, h.b.normalizeTags(context.Background(), &Result{}))

	assert.EqualValues(t, 2, h.mem.Writes())
	got := map[string]string{}
	for _, tag := range h.mem.Tags() {
		got[tag.Name] = tag.Normalized
	}
	assert.Equal(t, "vpn", got["  VPN "])
	assert.Equal(t, "printer", got["printer"])
	assert.Equal(t, "café", got["Café"])
}

func TestNormalizeTags_StopsAtFirstSaveError(t *testing.T) {
	h := newHarness(t, testOptions())
	h.mem.AddTag(domain.Tag{Name: "A"})
	h.mem.AddTag(domain.Tag{Name: "B"})
	h.mem.FailOn("tags.save", assert.AnError)

	err := h.b.normalizeTags(context.Background(), &Result{})

	assert.ErrorIs(t, err, assert.AnError)
	assert.Zero(t, h.mem.Writes())
}
