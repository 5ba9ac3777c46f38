// Package web embeds the portal's templates and static assets so the
// binaries ship self-contained.
package web

import "embed"

//go:embed templates/*.html
var TemplatesFS embed.FS

//go:embed static/*
var StaticFS embed.FS
