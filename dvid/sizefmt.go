package dvid

import "github.com/dustin/go-humanize"

// FormatBytes renders a byte count the way filter log lines report volume
// sizes, e.g. "1.2 GB".
func FormatBytes(n int64) string {
	return humanize.Bytes(uint64(n))
}

// FormatCount renders a voxel or label count with thousands separators,
// e.g. "1,048,576".
func FormatCount(n int64) string {
	return humanize.Comma(n)
}
