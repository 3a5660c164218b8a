// Package database provides connection management, the session scope that
// decides who owns each unit of work, storage error classification, query
// hooks, migrations, foreign key handling, SQL seeding and configuration,
// all built on top of Bun.
package database
