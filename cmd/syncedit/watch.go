package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
)

// runWatch re-applies the transformation whenever the input file
// changes. The result never overwrites the watched file: it goes to
// stdout, or to the -o path when set.
func runWatch(opts *options, file string, op operator) error {
	if opts.output != "" {
		abs, err := filepath.Abs(file)
		if err != nil {
			return err
		}
		out, err := filepath.Abs(opts.output)
		if err != nil {
			return err
		}
		if abs == out {
			return fmt.Errorf("--watch cannot write back to the watched file")
		}
	}

	apply := func() {
		result, err := transform(opts, file, op)
		if err != nil {
			fmt.Fprintf(os.Stderr, "syncedit: %v\n", err)
			return
		}
		if opts.output == "" {
			fmt.Print(result)
			return
		}
		if err := writeResult(file, opts.output, result); err != nil {
			fmt.Fprintf(os.Stderr, "syncedit: %v\n", err)
		}
	}
	apply()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors commonly replace files
	// by rename, which drops a direct file watch.
	dir := filepath.Dir(file)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	target := filepath.Clean(file)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	for {
		select {
		case <-signals:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			apply()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "syncedit: watch: %v\n", err)
		}
	}
}

func writeResult(file, target, result string) error {
	info, err := os.Stat(file)
	if err != nil {
		return err
	}
	return os.WriteFile(target, []byte(result), info.Mode().Perm())
}
