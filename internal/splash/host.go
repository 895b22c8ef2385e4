package splash

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// HostInfo is the locally gathered portion of the splash.
type HostInfo struct {
	Hostname string
	Kernel   string
	Uptime   time.Duration
	Load1    float64
	DiskFree uint64
	DiskSize uint64
}

func gatherHost(diskPath string) HostInfo {
	var info HostInfo
	if name, err := os.Hostname(); err == nil {
		info.Hostname = name
	}
	var uname unix.Utsname
	if err := unix.Uname(&uname); err == nil {
		info.Kernel = unix.ByteSliceToString(uname.Release[:])
	}
	if uptime, err := readUptime("/proc/uptime"); err == nil {
		info.Uptime = uptime
	}
	if load, err := readLoad("/proc/loadavg"); err == nil {
		info.Load1 = load
	}
	if free, size, err := diskUsage(diskPath); err == nil {
		info.DiskFree = free
		info.DiskSize = size
	}
	return info
}

func readUptime(path string) (time.Duration, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(string(raw))
	if len(fields) == 0 {
		return 0, fmt.Errorf("malformed uptime file")
	}
	seconds, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func readLoad(path string) (float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(string(raw))
	if len(fields) == 0 {
		return 0, fmt.Errorf("malformed loadavg file")
	}
	return strconv.ParseFloat(fields[0], 64)
}

func diskUsage(path string) (free, size uint64, err error) {
	if path == "" {
		path = "/"
	}
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, 0, err
	}
	blockSize := uint64(stat.Bsize)
	return stat.Bavail * blockSize, stat.Blocks * blockSize, nil
}

func formatUptime(uptime time.Duration) string {
	if uptime <= 0 {
		return "unknown"
	}
	days := int(uptime.Hours()) / 24
	hours := int(uptime.Hours()) % 24
	minutes := int(uptime.Minutes()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
