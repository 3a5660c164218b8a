// Package models holds the bun entities of the reference store together with
// their create, read and update shapes.
//
// Entities owning an enable column embed Audit, which makes them
// soft-deletable and audited. Entities in or under the administrative
// hierarchy declare their anchor through HierarchyAnchor.
package models
