// Package migrations holds the CRM schema migrations. Importing it registers
// them with pkg/migration.
package migrations
