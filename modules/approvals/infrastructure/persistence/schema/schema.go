// Package schema holds the goose migrations of the approvals tables.
package schema

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS

// Dir is the directory inside Migrations goose should read.
const Dir = "migrations"
