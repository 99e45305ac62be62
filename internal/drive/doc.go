// Package drive defines the storage collaborator contracts the ingestion
// engine depends on (folder listing and creation, change feeds, file
// persistence) plus a local-filesystem implementation used by the
// development profile and tests. The cloud wire client lives outside this
// repository; only its contracts are owned here.
package drive
