package index

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/portalworks/docportal/internal/domain"
)

// Fingerprint derives the stable dedup key for a chunk.
//
// When the metadata carries a non-empty source (or file_path), the key is
// "<source>::<row_id>", independent of the chunk text. Two chunks with
// different content but the same source and row_id therefore collapse to one
// index entry: dedup is keyed on the source route, not the content. Chunks
// with no source fall back to the hex SHA-256 digest of the text.
func Fingerprint(text string, metadata map[string]string) string {
	src := metadata[domain.MetaSource]
	if src == "" {
		src = metadata[domain.MetaFilePath]
	}
	if src != "" {
		return src + "::" + metadata[domain.MetaRowID]
	}

	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
