package convert

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/voysys/vraw-convert/pkg/vraw"
)

// Swapped for a fixed clock in tests.
var timeNow = time.Now

// DeriveOutputPath derives the default output path: the input base name
// with its .vraw suffix stripped, an underscore, a local-time timestamp
// and an extension chosen by the dominant format, placed next to the
// input file. Pure given a fixed clock reading.
func DeriveOutputPath(inputPath string, format vraw.Format, now time.Time) (string, error) {
	var extension string
	switch format {
	case vraw.FormatH265:
		extension = "mp4"
	case vraw.FormatMJPEG:
		extension = "mjpeg"
	default:
		return "", fmt.Errorf("derive output name: %w: %v", ErrUnsupportedFormat, format)
	}

	name := fmt.Sprintf("%s_%s.%s",
		strings.TrimSuffix(filepath.Base(inputPath), ".vraw"),
		now.Format("2006-01-02T15_04_05"),
		extension,
	)
	return filepath.Join(filepath.Dir(inputPath), name), nil
}
