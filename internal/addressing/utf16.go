package addressing

// Telegram entity offsets count UTF-16 code units, not bytes or runes.
// These helpers convert entity spans to byte ranges on the Go string.

func sliceByUTF16(s string, offset, length int) string {
	if offset < 0 {
		offset = 0
	}
	if length <= 0 || s == "" {
		return ""
	}
	start := utf16OffsetToByteIndex(s, offset)
	end := utf16OffsetToByteIndex(s, offset+length)
	if start > end {
		return ""
	}
	return s[start:end]
}

func utf16OffsetToByteIndex(s string, offset int) int {
	if offset <= 0 {
		return 0
	}
	count := 0
	for i, r := range s {
		if count >= offset {
			return i
		}
		if r <= 0xFFFF {
			count++
		} else {
			count += 2
		}
	}
	return len(s)
}
