// Package models defines domain entities and persistence interfaces for the starsync library sync tool.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs passed between components
//   - [Track] : An artist/title pair from any source
//   - [ScannedFile] : A local audio file with its parsed tags
//   - [Capture] : One entry from the user's capture list
//   - [RemoteEntry] : A matching entry on the catalogue site
//
// 2. Persistent Entities: Database-backed cache models
//   - [PersistedScan] : Cached local scan results with scan timestamps
//   - [PersistedCapture] : Cached capture list entries
//
// All persistent entities implement the Model interface providing ID generation,
// timestamps, and validation. The Repository[T] interface defines standard CRUD
// operations for database access.
package models
