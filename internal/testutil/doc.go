// Package testutil holds test doubles shared by the application test
// suites: an in-memory library opener standing in for Go plugins, and a
// thread-safe log buffer.
package testutil
