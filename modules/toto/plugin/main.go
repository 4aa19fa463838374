// Command plugin is built with -buildmode=plugin. It registers nothing at
// open time; everything comes from its Module.
package main

import "github.com/vk/godi/modules/toto"

var Module = toto.NewModule("module02", "module02")

func main() {}
