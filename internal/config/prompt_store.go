package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"resumelens/internal/errors"
)

// promptTasks are the task names a system-prompt override may target.
var promptTasks = []string{
	"role", "skills", "seniority", "quantification",
	"actionVerbs", "softSkills", "consistency", "summary", "jobMatch",
}

// PromptStore holds system-prompt overrides for analysis tasks. Inline
// config values take precedence over <task>.txt files in the prompt
// directory. Reads are safe during a watcher-triggered reload.
type PromptStore struct {
	mu        sync.RWMutex
	overrides map[string]string

	cfg    PromptsConfig
	logger *errors.Logger

	fsWatcher     *fsnotify.Watcher
	debounceTimer *time.Timer
	stopChan      chan struct{}
	running       bool
}

// NewPromptStore loads prompt overrides from configuration and, when a
// directory is configured, from files under it.
func NewPromptStore(cfg PromptsConfig, logger *errors.Logger) (*PromptStore, error) {
	s := &PromptStore{
		cfg:      cfg,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// System returns the override for a task, if one is configured.
func (s *PromptStore) System(task string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.overrides[task]
	return v, ok
}

// Tasks returns the task names that currently have overrides.
func (s *PromptStore) Tasks() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tasks := make([]string, 0, len(s.overrides))
	for task := range s.overrides {
		tasks = append(tasks, task)
	}
	slices.Sort(tasks)
	return tasks
}

// reload rebuilds the override map from the directory and inline config.
// Directory files are read first so inline values win.
func (s *PromptStore) reload() error {
	overrides := make(map[string]string)

	if s.cfg.Dir != "" {
		for _, task := range promptTasks {
			path := filepath.Join(s.cfg.Dir, task+".txt")
			content, err := os.ReadFile(path)
			if err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return fmt.Errorf("failed to read prompt file %s: %w", path, err)
			}
			trimmed := strings.TrimSpace(string(content))
			if trimmed == "" {
				return fmt.Errorf("prompt file %s is empty", path)
			}
			overrides[task] = trimmed
			if s.logger != nil {
				s.logger.Debug("Loaded prompt override from file",
					"task", task, "file", path, "chars", len(trimmed))
			}
		}
	}

	for task, text := range s.cfg.System {
		if !slices.Contains(promptTasks, task) {
			return fmt.Errorf("unknown prompt task %q (valid: %s)",
				task, strings.Join(promptTasks, ", "))
		}
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			continue
		}
		overrides[task] = trimmed
	}

	s.mu.Lock()
	s.overrides = overrides
	s.mu.Unlock()

	if s.logger != nil && len(overrides) > 0 {
		s.logger.Info("Prompt overrides loaded", "count", len(overrides))
	}
	return nil
}

// StartWatching watches the prompt directory and reloads overrides when
// files change. Change bursts are debounced. No-op when watching is not
// configured.
func (s *PromptStore) StartWatching() error {
	if !s.cfg.Watch || s.cfg.Dir == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("prompt watcher is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create prompt file watcher: %w", err)
	}
	if err := watcher.Add(s.cfg.Dir); err != nil {
		if closeErr := watcher.Close(); closeErr != nil && s.logger != nil {
			s.logger.LogError(closeErr, "Failed to close prompt watcher during cleanup")
		}
		return fmt.Errorf("failed to watch prompt directory %s: %w", s.cfg.Dir, err)
	}

	s.fsWatcher = watcher
	s.running = true
	go s.watchLoop()

	if s.logger != nil {
		s.logger.Info("Prompt directory watcher started",
			"dir", s.cfg.Dir, "debounce_delay", s.debounceDelay())
	}
	return nil
}

// StopWatching stops the prompt directory watcher.
func (s *PromptStore) StopWatching() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	close(s.stopChan)
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	if err := s.fsWatcher.Close(); err != nil {
		if s.logger != nil {
			s.logger.LogError(err, "Failed to close prompt file watcher")
		}
		return err
	}

	s.running = false
	return nil
}

func (s *PromptStore) debounceDelay() time.Duration {
	if s.cfg.DebounceDelay > 0 {
		return s.cfg.DebounceDelay
	}
	return time.Second
}

func (s *PromptStore) watchLoop() {
	for {
		select {
		case event, ok := <-s.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				s.scheduleReload(event.Name)
			}
		case err, ok := <-s.fsWatcher.Errors:
			if !ok {
				return
			}
			if s.logger != nil {
				s.logger.LogError(err, "Prompt file watcher error")
			}
		case <-s.stopChan:
			return
		}
	}
}

// scheduleReload coalesces file events: editors typically emit several
// per save.
func (s *PromptStore) scheduleReload(file string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceTimer = time.AfterFunc(s.debounceDelay(), func() {
		if err := s.reload(); err != nil {
			// Keep serving the previous overrides on a bad reload.
			if s.logger != nil {
				s.logger.LogError(err, "Prompt reload failed, keeping previous overrides", "trigger", file)
			}
			return
		}
		if s.logger != nil {
			s.logger.Info("Prompt overrides reloaded", "trigger", file)
		}
	})
}
