package toto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/godi/component"
	"github.com/vk/godi/modules/services"
)

func TestNewModule_ProvidesOneServicePerOrigin(t *testing.T) {
	// --- Arrange ---
	g := component.NewRegistrar()
	r := g.New(nil)
	m := NewModule("module01", "module01", "integrated")

	// --- Act ---
	require.NoError(t, m.Activate(r))

	// --- Assert ---
	var got []string
	for _, s := range component.FindAll[services.TotoService](r) {
		got = append(got, s.Titi())
	}
	assert.Equal(t, []string{"titi(module01)", "titi(integrated)"}, got)

	d, ok := r.GetByName("toto-integrated")
	require.True(t, ok)
	origin, _ := d.Property("origin")
	assert.Equal(t, "integrated", origin)

	m.Deactivate()
	assert.Zero(t, r.Len())
}
