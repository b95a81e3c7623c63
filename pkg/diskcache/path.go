package diskcache

import (
	"crypto/md5"
	"encoding/hex"
	"path/filepath"
)

// RecordExt is the file extension of every record file.
const RecordExt = ".record"

const digestLen = md5.Size * 2

// RecordPath derives the file location of key under root:
//
//	root/segment/d[0:2]/d[2:4]/d.record
//
// where d is the lowercase hex MD5 of key.ID. The mapping is pure and
// total; callers validate the segment beforehand. Distinct ids with the
// same digest share a path.
func RecordPath(root string, key Key) string {
	return recordPath(root, key.Segment, digestID(key.ID))
}

// IsRecordName reports whether name is a record file name: exactly 32
// lowercase hex characters followed by [RecordExt].
func IsRecordName(name string) bool {
	if len(name) != digestLen+len(RecordExt) || name[digestLen:] != RecordExt {
		return false
	}

	for i := range digestLen {
		c := name[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}

	return true
}

func digestID(id string) string {
	sum := md5.Sum([]byte(id))

	return hex.EncodeToString(sum[:])
}

func recordPath(root, segment, digest string) string {
	return filepath.Join(root, segment, digest[0:2], digest[2:4], digest+RecordExt)
}
