// Package toto implements services.TotoService.
package toto

import (
	"github.com/vk/godi/component"
	"github.com/vk/godi/modules/services"
)

type Service struct {
	Origin string
}

var _ services.TotoService = (*Service)(nil)

func (s *Service) Titi() string { return "titi(" + s.Origin + ")" }

// NewModule declares a module providing one toto Service per origin, named
// "toto-<origin>".
func NewModule(name string, origins ...string) *component.Module {
	providers := make([]component.Provider, 0, len(origins))
	for _, origin := range origins {
		providers = append(providers, component.Provide("toto-"+origin, func() component.Component {
			return &Service{Origin: origin}
		}, component.Properties{"origin": origin}))
	}
	return component.NewModule(name, providers...)
}
