// Package report renders the contents of registries after a load: the
// plain listing printed by didump, the .didef/.direp definition files,
// YAML, JSON and HCL documents, and a socket.io publisher that pushes the
// same document to a remote listener.
package report
