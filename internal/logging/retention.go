package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RetentionTarget names a log directory, the glob its run logs match and
// any files that must survive pruning.
type RetentionTarget struct {
	Dir     string
	Pattern string
	Exclude []string
}

// CleanupOldLogs deletes run logs last modified more than retentionDays ago.
// Zero or negative retention keeps everything.
func CleanupOldLogs(logger *slog.Logger, retentionDays int, targets ...RetentionTarget) {
	if retentionDays <= 0 {
		return
	}
	p := pruner{
		logger: logger,
		cutoff: time.Now().AddDate(0, 0, -retentionDays),
		keep:   keptPaths(targets),
		days:   retentionDays,
	}
	for _, target := range targets {
		p.prune(target)
	}
}

type pruner struct {
	logger *slog.Logger
	cutoff time.Time
	keep   map[string]bool
	days   int
}

func keptPaths(targets []RetentionTarget) map[string]bool {
	keep := map[string]bool{}
	for _, target := range targets {
		for _, raw := range target.Exclude {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			if abs, err := filepath.Abs(raw); err == nil {
				keep[abs] = true
			}
		}
	}
	return keep
}

func (p pruner) prune(target RetentionTarget) {
	dir := strings.TrimSpace(target.Dir)
	if dir == "" {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	pattern := strings.TrimSpace(target.Pattern)
	for _, entry := range entries {
		if entry.IsDir() || !matchesPattern(pattern, entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if p.keep[path] || !p.expired(entry) {
			continue
		}
		p.remove(path)
	}
}

func matchesPattern(pattern, name string) bool {
	if pattern == "" {
		return true
	}
	ok, err := filepath.Match(pattern, name)
	return err == nil && ok
}

func (p pruner) expired(entry os.DirEntry) bool {
	info, err := entry.Info()
	if err != nil {
		return false
	}
	return info.ModTime().Before(p.cutoff)
}

func (p pruner) remove(path string) {
	if err := os.Remove(path); err != nil {
		WarnWithContext(p.logger, "could not prune expired run log", "log_retention_failed",
			String("path", path),
			Error(err),
			String(FieldErrorHint, "make sure the log directory is writable by the autoreply user"),
			String(FieldImpact, "the expired log is retried at the next start"),
		)
		return
	}
	if p.logger != nil {
		p.logger.Debug("expired run log pruned",
			String("path", path),
			String(FieldEventType, "log_pruned"),
			Int("retention_days", p.days),
		)
	}
}
