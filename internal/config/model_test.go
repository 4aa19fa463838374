package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		plan    Plan
		wantErr error
	}{
		{
			name: "valid plan",
			plan: Plan{
				Registries: []*Registry{{Name: "child", Parent: "plugins"}, {Name: "plugins", Parent: GlobalRegistry}},
				Loads:      []*Load{{Name: "svc", Registry: "child", Directory: "./plugins"}, {Name: "core", Paths: []string{"a.so"}}},
			},
		},
		{
			name:    "reserved global name",
			plan:    Plan{Registries: []*Registry{{Name: GlobalRegistry}}},
			wantErr: ErrDuplicate,
		},
		{
			name:    "duplicate registry",
			plan:    Plan{Registries: []*Registry{{Name: "a"}, {Name: "a"}}},
			wantErr: ErrDuplicate,
		},
		{
			name:    "unknown parent",
			plan:    Plan{Registries: []*Registry{{Name: "a", Parent: "nope"}}},
			wantErr: ErrUnknownRegistry,
		},
		{
			name:    "parent cycle",
			plan:    Plan{Registries: []*Registry{{Name: "a", Parent: "b"}, {Name: "b", Parent: "a"}}},
			wantErr: ErrRegistryCycle,
		},
		{
			name:    "unknown load target",
			plan:    Plan{Loads: []*Load{{Name: "x", Registry: "nope", Paths: []string{"a.so"}}}},
			wantErr: ErrUnknownRegistry,
		},
		{
			name:    "duplicate load",
			plan:    Plan{Loads: []*Load{{Name: "x", Paths: []string{"a"}}, {Name: "x", Paths: []string{"b"}}}},
			wantErr: ErrDuplicate,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.plan.Validate()
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestPlan_ValidateRequiresSource(t *testing.T) {
	p := Plan{Loads: []*Load{{Name: "empty"}}}
	assert.ErrorContains(t, p.Validate(), "one of paths or directory is required")
}

func TestPlan_RegistryOrderPutsParentsFirst(t *testing.T) {
	p := Plan{Registries: []*Registry{
		{Name: "leaf", Parent: "mid"},
		{Name: "other"},
		{Name: "mid", Parent: "root"},
		{Name: "root", Parent: GlobalRegistry},
	}}

	order, err := p.RegistryOrder()
	require.NoError(t, err)

	var names []string
	for _, r := range order {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"root", "mid", "leaf", "other"}, names)
}

func TestFilter_Empty(t *testing.T) {
	var nilFilter *Filter
	assert.True(t, nilFilter.Empty())
	assert.True(t, (&Filter{}).Empty())
	assert.False(t, (&Filter{Suffix: ".so"}).Empty())
}
