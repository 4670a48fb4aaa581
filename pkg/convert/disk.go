package convert

import (
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/sirupsen/logrus"
)

// warnLowDiskSpace warns when the destination filesystem has less free
// space than the input recording size. The output is at most as large as
// the input, so this is a conservative bound. Failures to stat are only
// logged, the conversion proceeds either way.
func warnLowDiskSpace(outputPath string, input *os.File) {
	stat, err := input.Stat()
	if err != nil {
		logrus.Debugf("stat input: %v", err)
		return
	}

	usage, err := disk.Usage(filepath.Dir(outputPath))
	if err != nil {
		logrus.Debugf("disk usage: %v", err)
		return
	}

	if usage.Free < uint64(stat.Size()) {
		logrus.Warnf("low disk space: %d bytes free, input is %d bytes",
			usage.Free, stat.Size())
	}
}
