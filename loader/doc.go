// Package loader opens libraries while a target registry is active, so that
// every component the libraries register during their initialization lands
// in that registry.
//
// The dynamic-library primitive is abstracted behind Opener. NativeOpener
// uses Go's plugin package; tests and embedders can substitute their own.
// A library may additionally export a symbol named "Module" holding a
// component.Module (or any Activator); the loader activates it into the same
// target registry and deactivates it again on Unload.
package loader
