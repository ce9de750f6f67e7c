package hashlinks

import (
	"crypto/md5"
	"encoding/binary"
	"regexp"
	"strconv"
)

// saltSeparator joins a salt to the URL before hashing.
const saltSeparator = "$"

// idPattern matches every string ComputeID can return.
var idPattern = regexp.MustCompile(`^[0-9a-v]{1,8}$`)

// ValidID reports whether id could have been returned by ComputeID.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// ComputeID returns the short ID for target.
//
// The ID is the first 40 bits of the MD5 digest of target, rendered in base 32
// (digits and a-v). A non-empty salt is prepended as salt+"$"+target before
// hashing; Assign uses the previously colliding ID as salt to probe for a free ID.
func ComputeID(target, salt string) string {
	input := target
	if salt != "" {
		input = salt + saltSeparator + target
	}

	sum := md5.Sum([]byte(input))

	// 5 bytes = 40 bits = 8 base 32 digits
	var buf [8]byte
	copy(buf[3:], sum[:5])

	return strconv.FormatUint(binary.BigEndian.Uint64(buf[:]), 32)
}
