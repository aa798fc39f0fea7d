package receipt

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/limousyf/receipt-printer/internal/logging"
)

// templateExt is the extension AddTemplateDir looks for.
const templateExt = ".receipt"

type templateFile struct{ name, content string }

// Bundle is a collection of template files.  It acts as input for the
// compiler: add files or strings, then Compile into a Registry.  With
// WatchFiles on, edits to added files recompile the bundle and update the
// registry in place.
type Bundle struct {
	files                 []templateFile
	err                   error
	watcher               *fsnotify.Watcher
	recompilationCallback func(*Registry)
}

// NewBundle returns an empty bundle.
func NewBundle() *Bundle {
	return &Bundle{}
}

// WatchFiles tells the bundle to watch any template files added to it,
// re-compile as necessary, and update the compiled registry.  It should be
// called once, before adding any files.
func (b *Bundle) WatchFiles(watch bool) *Bundle {
	if watch && b.err == nil && b.watcher == nil {
		b.watcher, b.err = fsnotify.NewWatcher()
	}
	return b
}

// AddTemplateDir adds all *.receipt files found within the given directory
// (including sub-directories) to the bundle.
func (b *Bundle) AddTemplateDir(root string) *Bundle {
	var err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, templateExt) {
			return nil
		}
		b.AddTemplateFile(path)
		return nil
	})
	if err != nil {
		b.err = err
	}
	return b
}

// AddTemplateFile adds the given template file to this bundle.  If
// WatchFiles is on, it will be subsequently watched for updates.
func (b *Bundle) AddTemplateFile(filename string) *Bundle {
	content, err := os.ReadFile(filename)
	if err != nil {
		b.err = err
	}
	if b.err == nil && b.watcher != nil {
		b.err = b.watcher.Add(filename)
	}
	return b.AddTemplateString(filename, string(content))
}

// AddTemplateString adds the given template source to the bundle.  The name
// is used for error messages and registry lookup; it does not need to be a
// real filename.
func (b *Bundle) AddTemplateString(name, src string) *Bundle {
	b.files = append(b.files, templateFile{name, src})
	return b
}

// SetRecompilationCallback assigns the bundle a function to call after
// recompilation.  This is called before updating the in-use registry.
func (b *Bundle) SetRecompilationCallback(c func(*Registry)) *Bundle {
	b.recompilationCallback = c
	return b
}

// Compile parses all of the templates in this bundle and returns the
// completed registry.
func (b *Bundle) Compile() (*Registry, error) {
	if b.err != nil {
		return nil, b.err
	}

	var registry = &Registry{}
	for _, file := range b.files {
		var t, err = Parse(file.name, file.content)
		if err != nil {
			return nil, err
		}
		if err = registry.Add(t); err != nil {
			return nil, err
		}
	}

	if b.watcher != nil {
		go b.recompiler(registry)
	}
	return registry, nil
}

// Close stops watching files.  It is a no-op for bundles without
// WatchFiles.
func (b *Bundle) Close() error {
	if b.watcher == nil {
		return nil
	}
	return b.watcher.Close()
}

func (b *Bundle) recompiler(reg *Registry) {
	var logger = logging.GetLogger("bundle")
	for {
		select {
		case ev, ok := <-b.watcher.Events:
			if !ok {
				return
			}
			// A rename or remove drops the watch.  Editors that save via
			// rename trigger this on every write, so add it back after a
			// delay.
			if ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove) {
				time.Sleep(10 * time.Millisecond)
				if err := b.watcher.Add(ev.Name); err != nil {
					logger.Warn().Err(err).Str("file", ev.Name).Msg("re-adding watch")
					continue
				}
			}

			// Recompile everything from disk.
			var bundle = NewBundle()
			for _, file := range b.files {
				bundle.AddTemplateFile(file.name)
			}
			var registry, err = bundle.Compile()
			if err != nil {
				logger.Warn().Err(err).Msg("recompilation failed")
				continue
			}

			if b.recompilationCallback != nil {
				b.recompilationCallback(registry)
			}

			// Update the in-use registry.  This is not goroutine-safe, but
			// that seems ok for a development aid, as long as it works in
			// practice.
			*reg = *registry
			logger.Info().Str("file", ev.Name).Msg("templates recompiled")

		case err, ok := <-b.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn().Err(err).Msg("watch error")
		}
	}
}
