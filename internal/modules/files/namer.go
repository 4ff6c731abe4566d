package files

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"filesmanager/internal/domain"
	"filesmanager/internal/metrics"
)

const defaultMaxAttempts = 10000

// Namer resolves upload name collisions by appending "(n)" to the stem.
// Probing is not a reservation: concurrent callers may pick the same name,
// and the unique index on files.filename decides who wins.
type Namer struct {
	files     NameIndex
	metrics   *metrics.Metrics
	maxAttempts int
}

func NewNamer(files NameIndex, m *metrics.Metrics) *Namer {
	return &Namer{files: files, metrics: m, maxAttempts: defaultMaxAttempts}
}

// Resolve returns candidate if it is free, otherwise the first free
// "stem(n)ext" counting up from the counter stored on the existing file.
// The returned counter is 0 when candidate was used unchanged.
func (n *Namer) Resolve(ctx context.Context, candidate string) (string, int, error) {
	existing, err := n.files.GetByName(ctx, candidate)
	if errors.Is(err, domain.ErrNotFound) {
		return candidate, 0, nil
	}
	if err != nil {
		return "", 0, err
	}

	stem, ext := SplitName(candidate)
	start := existing.NameCounter
	if start < 1 {
		start = 1
	}

	for i := start; i < start+n.maxAttempts; i++ {
		name := fmt.Sprintf("%s(%d)%s", stem, i, ext)
		n.metrics.NameLookup()

		taken, err := n.files.ExistsByName(ctx, name)
		if err != nil {
			return "", 0, err
		}
		if !taken {
			return name, i, nil
		}
	}
	return "", 0, ErrNameConflict
}

// SplitName splits name into stem and extension. Dotfiles such as
// ".env" have no extension.
func SplitName(name string) (string, string) {
	ext := filepath.Ext(name)
	if ext == name || ext == "." {
		return name, ""
	}
	return name[:len(name)-len(ext)], ext
}
