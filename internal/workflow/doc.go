// Package workflow runs the full redshift estimation pipeline described by
// a [config.Config]: fetch the inputs, remove the continuum, cross-correlate
// against a template and sweep a template library.
package workflow
