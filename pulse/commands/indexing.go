package commands

import (
	"fmt"
	"strings"
)

// Indexing selects how the fragment shader chooses the texture slot.
type Indexing int

const (
	// IndexingUniform samples the slot selected by SetTextureIndex for every fragment.
	IndexingUniform Indexing = iota

	// IndexingNonUniform adds the per vertex slot to the selected slot.
	IndexingNonUniform
)

func (i Indexing) String() string {
	switch i {
	case IndexingUniform:
		return "uniform"
	case IndexingNonUniform:
		return "non_uniform"
	default:
		return fmt.Sprintf("Indexing(%d)", int(i))
	}
}

func ParseIndexing(value string) (Indexing, error) {
	switch strings.ToLower(value) {
	case "", "uniform":
		return IndexingUniform, nil
	case "non_uniform", "nonuniform":
		return IndexingNonUniform, nil
	default:
		return 0, fmt.Errorf("unknown indexing %q", value)
	}
}
