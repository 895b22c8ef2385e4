package feeds

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pimo/internal/config"
)

// Sources assembles the relay's feed URL list from the configured
// inline list, optional feeds file, and optional feeds directory.
// Shorthand entries are normalized to full URLs and duplicates are
// dropped while preserving first-seen order.
func Sources(cfg config.Relay) ([]string, error) {
	var raw []string
	raw = append(raw, cfg.Feeds...)

	if cfg.FeedsFile != "" {
		fromFile, err := readFeedsFile(cfg.FeedsFile)
		if err != nil {
			return nil, err
		}
		raw = append(raw, fromFile...)
	}

	if cfg.FeedsDir != "" {
		fromDir, err := readFeedsDir(cfg.FeedsDir)
		if err != nil {
			return nil, err
		}
		raw = append(raw, fromDir...)
	}

	seen := make(map[string]struct{}, len(raw))
	urls := make([]string, 0, len(raw))
	for _, entry := range raw {
		url := NormalizeSource(entry)
		if url == "" {
			continue
		}
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		urls = append(urls, url)
	}
	return urls, nil
}

// NormalizeSource expands shorthand feed entries:
//
//	r/<subreddit>          -> https://www.reddit.com/r/<subreddit>/.rss
//	are.na channel URL     -> same URL with /.rss appended
//
// Full http(s) URLs pass through unchanged.
func NormalizeSource(entry string) string {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return ""
	}
	if strings.HasPrefix(entry, "r/") {
		return "https://www.reddit.com/" + strings.TrimSuffix(entry, "/") + "/.rss"
	}
	if strings.Contains(entry, "are.na/") && !strings.HasSuffix(entry, ".rss") {
		return strings.TrimSuffix(entry, "/") + "/.rss"
	}
	return entry
}

func readFeedsFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open feeds file: %w", err)
	}
	defer file.Close()

	var entries []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if idx := strings.Index(line, " #"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		if line != "" {
			entries = append(entries, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read feeds file: %w", err)
	}
	return entries, nil
}

func readFeedsDir(dir string) ([]string, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read feeds dir: %w", err)
	}

	names := make([]string, 0, len(items))
	for _, item := range items {
		if item.IsDir() {
			continue
		}
		name := item.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if ext := filepath.Ext(name); ext != ".txt" && ext != ".list" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var entries []string
	for _, name := range names {
		fromFile, err := readFeedsFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		entries = append(entries, fromFile...)
	}
	return entries, nil
}
