package config

import (
	"github.com/wesleyorama2/syncreq/internal/config"
)

type (
	// File is a parsed and schema-checked request file.
	File = config.File
	// ValidationError locates one problem in a request file.
	ValidationError = config.ValidationError
	// ValidationErrors collects every problem found in one file.
	ValidationErrors = config.ValidationErrors
)

var (
	// LoadFile reads and parses a request file.
	LoadFile = config.LoadFile
	// Parse decodes and validates request file content.
	Parse = config.Parse
	// ProcessEnvironment substitutes {{name}} placeholders.
	ProcessEnvironment = config.ProcessEnvironment
)
