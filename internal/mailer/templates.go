package mailer

import (
	"embed"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"os"
	"path/filepath"
	"strings"
	"sync"
	texttemplate "text/template"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/team-usage-dashboard/internal/logger"
)

// Template file names looked up in the override directory.
const (
	TextTemplateFile = "report.txt.tmpl"
	HTMLTemplateFile = "report.html.tmpl"
)

//go:embed templates/*.tmpl
var defaultTemplates embed.FS

// TemplateData is the view passed to both body templates.
type TemplateData struct {
	Title          string
	Message        string
	Timestamp      string
	RecipientCount int
	Recipients     string
	DashboardURL   string
	FromName       string
	AttachmentName string
}

// Templates holds the text and HTML body templates. When built with a
// directory, overrides found there are loaded and reloaded on change.
type Templates struct {
	mu            sync.RWMutex
	text          *texttemplate.Template
	html          *htmltemplate.Template
	dir           string
	watcher       *fsnotify.Watcher
	stopChan      chan struct{}
	debounceTimer *time.Timer
	closeOnce     sync.Once
	onReload      func()
}

// TemplateOption configures a Templates store.
type TemplateOption func(*Templates)

// WithReloadHook registers fn to run after each successful hot reload.
func WithReloadHook(fn func()) TemplateOption {
	return func(t *Templates) {
		t.onReload = fn
	}
}

// NewTemplates loads the built-in templates and, if dir is set, the
// overrides in dir, then watches dir for changes.
func NewTemplates(dir string, opts ...TemplateOption) (*Templates, error) {
	t := &Templates{dir: dir, stopChan: make(chan struct{})}
	for _, opt := range opts {
		opt(t)
	}

	if err := t.Reload(); err != nil {
		return nil, err
	}

	if dir != "" {
		if err := t.startWatcher(); err != nil {
			return nil, fmt.Errorf("failed to watch template directory: %w", err)
		}
	}

	return t, nil
}

// Render executes both templates.
func (t *Templates) Render(data TemplateData) (text, html string, err error) {
	t.mu.RLock()
	textTmpl, htmlTmpl := t.text, t.html
	t.mu.RUnlock()

	var tb, hb strings.Builder
	if err := textTmpl.Execute(&tb, data); err != nil {
		return "", "", fmt.Errorf("failed to render text body: %w", err)
	}
	if err := htmlTmpl.Execute(&hb, data); err != nil {
		return "", "", fmt.Errorf("failed to render html body: %w", err)
	}
	return tb.String(), hb.String(), nil
}

// Reload parses the templates again. A broken override leaves the
// previously loaded templates in place.
func (t *Templates) Reload() error {
	textSrc, err := t.source(TextTemplateFile)
	if err != nil {
		return err
	}
	htmlSrc, err := t.source(HTMLTemplateFile)
	if err != nil {
		return err
	}

	textTmpl, err := texttemplate.New(TextTemplateFile).Parse(textSrc)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", TextTemplateFile, err)
	}
	htmlTmpl, err := htmltemplate.New(HTMLTemplateFile).Parse(htmlSrc)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", HTMLTemplateFile, err)
	}

	t.mu.Lock()
	t.text, t.html = textTmpl, htmlTmpl
	t.mu.Unlock()
	return nil
}

// source returns the override from dir when present, else the built-in.
func (t *Templates) source(name string) (string, error) {
	if t.dir != "" {
		data, err := os.ReadFile(filepath.Join(t.dir, name))
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("failed to read %s: %w", name, err)
		}
	}

	data, err := defaultTemplates.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("failed to read built-in %s: %w", name, err)
	}
	return string(data), nil
}

// startWatcher starts the file system watcher.
func (t *Templates) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	t.watcher = watcher

	if err := watcher.Add(t.dir); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go t.watchLoop()
	return nil
}

// watchLoop reloads templates on write, create, rename or remove of a
// template file, debounced.
func (t *Templates) watchLoop() {
	const debounceInterval = 100 * time.Millisecond

	for {
		select {
		case event, ok := <-t.watcher.Events:
			if !ok {
				return
			}

			name := filepath.Base(event.Name)
			if name != TextTemplateFile && name != HTMLTemplateFile {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				t.mu.Lock()
				if t.debounceTimer != nil {
					t.debounceTimer.Stop()
				}
				t.debounceTimer = time.AfterFunc(debounceInterval, t.handleChange)
				t.mu.Unlock()
			}

		case err, ok := <-t.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("template watcher error", "error", err)

		case <-t.stopChan:
			return
		}
	}
}

func (t *Templates) handleChange() {
	if err := t.Reload(); err != nil {
		logger.Error("failed to reload mail templates", "dir", t.dir, "error", err)
		return
	}
	logger.Info("mail templates reloaded", "dir", t.dir)

	if t.onReload != nil {
		t.onReload()
	}
}

// Close stops the watcher. Later calls are no-ops.
func (t *Templates) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.stopChan)

		t.mu.Lock()
		if t.debounceTimer != nil {
			t.debounceTimer.Stop()
		}
		t.mu.Unlock()

		if t.watcher != nil {
			err = t.watcher.Close()
		}
	})
	return err
}
