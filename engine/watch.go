package engine

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"deferred-renderer/core"
)

// Reload carries the runtime tunables of a re-read config file.
type Reload struct {
	Render core.RenderConfig
	Post   core.PostConfig
}

// ConfigWatcher re-reads the config file whenever it is written and offers
// the result on C. Only the newest pending Reload is kept; the render
// thread drains C once per frame.
type ConfigWatcher struct {
	C <-chan Reload

	path    string
	fs      *fsnotify.Watcher
	out     chan Reload
	done    chan struct{}
	closing sync.Once
	wg      sync.WaitGroup
}

// WatchConfig watches the directory holding path, so editors that replace
// the file on save are seen too.
func WatchConfig(path string) (*ConfigWatcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fsWatch.Close()
		return nil, err
	}
	if err := fsWatch.Add(filepath.Dir(abs)); err != nil {
		fsWatch.Close()
		return nil, err
	}

	out := make(chan Reload, 1)
	cw := &ConfigWatcher{
		C:    out,
		path: abs,
		fs:   fsWatch,
		out:  out,
		done: make(chan struct{}),
	}
	cw.wg.Add(1)
	go cw.run()
	return cw, nil
}

func (cw *ConfigWatcher) run() {
	defer cw.wg.Done()
	for {
		select {
		case e, ok := <-cw.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != cw.path || e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			cw.reload()

		case err, ok := <-cw.fs.Errors:
			if !ok {
				return
			}
			core.LogError("config watch: %v", err)

		case <-cw.done:
			return
		}
	}
}

func (cw *ConfigWatcher) reload() {
	cfg, err := core.LoadConfig(cw.path)
	if err != nil {
		core.LogWarn("config reload: %v", err)
		return
	}
	r := Reload{Render: cfg.Render, Post: cfg.Post}
	// Replace an undrained value with the newer one.
	select {
	case <-cw.out:
	default:
	}
	cw.out <- r
	core.LogInfo("config %s reloaded", cw.path)
}

func (cw *ConfigWatcher) Close() error {
	var err error
	cw.closing.Do(func() {
		close(cw.done)
		err = cw.fs.Close()
		cw.wg.Wait()
	})
	return err
}
