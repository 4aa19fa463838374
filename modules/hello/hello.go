// Package hello implements services.HelloService.
package hello

import (
	"fmt"
	"sync/atomic"

	"github.com/vk/godi/component"
	"github.com/vk/godi/modules/services"
)

// Name is the component name Register uses.
const Name = "hello"

// Service greets with an optional origin prefix, e.g. "(module01) ".
type Service struct {
	Origin string
	count  atomic.Int64
}

var _ services.HelloService = (*Service)(nil)

// Greet implements services.HelloService.
func (s *Service) Greet(name string) string {
	s.count.Add(1)
	if s.Origin == "" {
		return fmt.Sprintf("Hello %s !", name)
	}
	return fmt.Sprintf("(%s) Hello %s !", s.Origin, name)
}

// Count implements services.HelloService.
func (s *Service) Count() int { return int(s.count.Load()) }

// Register creates a Service and registers it into the active registry.
// Libraries call it from a package-level variable so that registration
// happens when the library is opened.
func Register(origin string, props component.Properties, opts ...component.InstanceOption) *component.Instance[services.HelloService] {
	opts = append([]component.InstanceOption{component.Named(Name), component.WithProperties(props)}, opts...)
	return component.NewInstance[services.HelloService](&Service{Origin: origin}, opts...)
}
