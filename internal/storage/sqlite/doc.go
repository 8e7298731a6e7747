// Package sqlite records computed output parameters into a SQLite database,
// grouped by session, and reads them back as per-parameter series.
//
// The schema is embedded and applied with golang-migrate on Open.
package sqlite
