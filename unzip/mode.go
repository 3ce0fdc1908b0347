package unzip

const (
	// upper half of a zip entry's external attributes, as stored by
	// unix-ish producers
	typeMask = 0170000 // S_IFMT

	// rw-r--r-- regular file, decimal 33188
	defaultFileMode = 0100644
)

// modeOf translates a zip entry's external file attributes into
// permission and file type bits. The attribute word is platform-specific:
// entries produced elsewhere may carry a zero (or meaningless) upper
// half, so a zero word gets a plain regular-file mode, and everything
// outside the read-write-execute groups and the type bits (setuid,
// setgid, sticky) is dropped.
func modeOf(externalAttrs uint32) uint32 {
	attrs := externalAttrs >> 16
	if attrs == 0 {
		attrs = defaultFileMode
	}
	return attrs&0700 + attrs&0070 + attrs&0007 + attrs&typeMask
}
