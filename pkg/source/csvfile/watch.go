// SPDX-FileCopyrightText: © 2025 Nfrastack <code@nfrastack.com>
//
// SPDX-License-Identifier: BSD-3-Clause

package csvfile

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch blocks and re-parses the export whenever it changes on disk,
// invoking onChange after each successful reload. Intended for keeping the
// destination in sync while the export is still being edited.
func (p *Provider) Watch(ctx context.Context, onChange func()) error {
	p.logger.Verbose("starting watch mode on %s", p.path)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: editors replace files rather than write in place
	dir := filepath.Dir(p.path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	absSource, _ := filepath.Abs(p.path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			absEvent, _ := filepath.Abs(event.Name)
			if absEvent != absSource {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			p.logger.Verbose("export changed: %s (%v)", event.Name, event.Op)
			if err := p.reload(); err != nil {
				p.logger.Error("failed to reload export: %v", err)
				continue
			}
			onChange()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.logger.Error("watch error: %v", err)
		}
	}
}
