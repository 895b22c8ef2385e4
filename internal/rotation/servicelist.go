package rotation

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// ReadServiceList loads the ordered unit list from path. Blank lines and
// comment lines are skipped; trailing inline comments are stripped.
// Duplicates are preserved: they rotate to the same effect twice, and order
// is what defines the rotation sequence.
func ReadServiceList(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoServiceList, path)
		}
		return nil, fmt.Errorf("open service list: %w", err)
	}
	defer file.Close()

	var services []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		if line != "" {
			services = append(services, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read service list: %w", err)
	}
	return services, nil
}
