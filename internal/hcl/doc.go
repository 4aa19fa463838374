// Package hcl provides the HCL implementation of config.Loader: it parses
// manifest files, decodes their blocks and translates them into a
// config.Plan.
package hcl
