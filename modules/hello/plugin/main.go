// Command plugin is built with -buildmode=plugin. Opening it registers a
// greeter into the active registry and exports a Module with two toto
// services.
package main

import (
	"github.com/vk/godi/component"
	"github.com/vk/godi/modules/hello"
	"github.com/vk/godi/modules/toto"
)

// Hello is registered when the plugin is opened.
var Hello = hello.Register("module01", component.Properties{"titi": "toto", "tata": "tutu"})

// Module is activated by the loader into the same registry.
var Module = toto.NewModule("module01", "module01", "integrated")

func main() {}
