// Package component provides the in-process component registry that plugins
// register themselves into.
//
// A Registry is an ordered list of Descriptors, each one pairing a process-wide
// unique ID and a name with a Component value and a flat set of Properties.
// Registries can be chained to a parent; every lookup scans the registry
// itself first and then its ancestors, so a child registry can shadow what its
// parent offers.
//
// Components are discovered by capability: Find, FindAll, FindIf and FindAllIf
// assert each stored component to the requested interface and keep the ones
// that implement it.
//
// Self-registration works through the Registrar. While a library is loaded,
// the loader activates a target registry in the Registrar's LoadContext. Any
// Instance constructed during the library's initialization (typically a
// package-level variable) asks the Registrar for the current target and
// registers there; with no active context the target is the global registry.
// Closing the Instance erases its registration again, wherever it landed.
//
// Libraries that prefer explicit wiring export a Module instead. The loader
// activates it into the target registry once the library is open, and
// deactivating it erases exactly the components it registered.
package component
