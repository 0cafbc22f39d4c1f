package badger

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Key prefixes for different data types
const (
	documentPrefix     = "docrec"
	documentDatePrefix = "docrecd"
)

// makeDocumentKey generates a key for a document record by id.
func makeDocumentKey(documentID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", documentPrefix, documentID))
}

// makeDocumentDateKey generates a composite key for the upload-date index.
// Format: prefix:timestamp:documentID
func makeDocumentDateKey(uploadedAt time.Time, documentID string) []byte {
	prefix := documentDatePrefix + ":"
	buf := make([]byte, len(prefix)+8+len(documentID))
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(uploadedAt.UnixMicro()))
	offset += 8
	copy(buf[offset:], documentID)
	return buf
}

// makePartialDocumentDateKey generates a partial key for date-ordered scans.
// Format: prefix:timestamp
func makePartialDocumentDateKey(timestamp time.Time) []byte {
	prefix := documentDatePrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	return buf
}
