// Package platform answers the questions an installer asks about the host:
// which (os-id, arch-id) pair it runs on, which package URL that pair maps
// to, and how to set permission bits and create links portably. On Windows
// permission changes are no-ops and links fall back to file copies.
package platform
