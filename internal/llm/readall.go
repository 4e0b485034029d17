package llm

import "io"

// maxResponseBytes caps how much of a model response is read.
const maxResponseBytes = 8 << 20

func readAll(r io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, maxResponseBytes))
}
