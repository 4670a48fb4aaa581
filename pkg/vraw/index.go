package vraw

import (
	"fmt"
	"io"
)

// ReadIndex reads the trailing random-access index. Entries are returned
// in file order. The source must be at least 8 bytes long.
func ReadIndex(in io.ReadSeeker) ([]IndexEntry, error) {
	if _, err := in.Seek(-indexFooterSize, io.SeekEnd); err != nil {
		return nil, fmt.Errorf("seek to index footer: %w", err)
	}

	buf := make([]byte, indexFooterSize)
	if _, err := io.ReadFull(in, buf); err != nil {
		return nil, fmt.Errorf("read index footer: %w", err)
	}

	var footer indexFooter
	if err := footer.Unmarshal(buf); err != nil {
		return nil, fmt.Errorf("unmarshal index footer: %w", err)
	}

	indexSize := int64(footer.Count) * IndexEntrySize
	if _, err := in.Seek(-(indexFooterSize + indexSize), io.SeekEnd); err != nil {
		return nil, fmt.Errorf("seek to index: %w", err)
	}

	entryBuf := make([]byte, IndexEntrySize)
	entries := make([]IndexEntry, footer.Count)
	for i := range entries {
		if _, err := io.ReadFull(in, entryBuf); err != nil {
			return nil, fmt.Errorf("read index entry %d: %w", i, err)
		}
		if err := entries[i].Unmarshal(entryBuf); err != nil {
			return nil, fmt.Errorf("unmarshal index entry %d: %w", i, err)
		}
	}

	return entries, nil
}
