// Package catalog reconstructs music-catalog entities from decoded rows and
// persists new accounts, residences and playlists.
//
// Reads are two-phase. The primary query is decoded into entities and its
// cursor closed; dependent collections (album image variants, playlist
// membership) are then loaded through the Store's FetchStrategy and attached
// by parent key. PerEntity issues one query per parent; Batched issues one IN
// query per chunk of parents.
//
// Residences are shared by accounts and deduplicated by their natural key
// (street, civic number, council, province). ResidenceResolver performs the
// find-or-create; concurrent resolutions of one key are collapsed in process
// and the store's UNIQUE constraint turns a lost race into a re-read.
//
// Surrogate identifiers come from an IDGenerator. TimeHexIDs renders the
// millisecond clock as uppercase hex and can collide within one millisecond;
// UUIDIDs does not. Collisions are reported as ErrIDCollision.
package catalog
