package services

// SplitText partitions text into consecutive, non-overlapping slices of at
// most maxChunkSize bytes, preserving order and exact content, so that
// concatenating the result reproduces the input. The final slice may be
// shorter. Empty text yields an empty slice.
//
// This is a deliberate length-based partition, not a semantic one: no
// sentence awareness, no overlap, no trimming.
func SplitText(text string, maxChunkSize int) ([]string, error) {
	if maxChunkSize < 1 {
		return nil, Errorf(KindInvalidInput, "services.SplitText", "maxChunkSize must be >= 1, got %d", maxChunkSize)
	}

	if len(text) == 0 {
		return []string{}, nil
	}

	chunks := make([]string, 0, (len(text)+maxChunkSize-1)/maxChunkSize)
	for start := 0; start < len(text); start += maxChunkSize {
		end := start + maxChunkSize
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
	}

	return chunks, nil
}
