package fee

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// ResolveStudentID derives a stable 8-character identifier from a student's
// name and class category. The inputs are hashed as-is: no case folding or
// whitespace normalization happens first, so "John Smith" and "john smith "
// resolve to different IDs. The digest is not collision-free but is treated
// as unique in practice.
func ResolveStudentID(studentName, classCategory string) string {
	sum := md5.Sum([]byte(studentName + "_" + classCategory))
	return strings.ToUpper(hex.EncodeToString(sum[:])[:8])
}
