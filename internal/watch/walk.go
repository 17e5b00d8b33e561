package watch

import "os"

// walkDirs calls fn for root and every directory beneath it, skipping
// entries it can't stat rather than failing the whole walk — a single
// unreadable subdirectory shouldn't prevent watching the rest of the tree.
func walkDirs(root string, fn func(dir string) error) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return nil
	}

	if err := fn(root); err != nil {
		return err
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if e.Name() == ".git" || e.Name() == "node_modules" {
			continue
		}
		_ = walkDirs(root+string(os.PathSeparator)+e.Name(), fn)
	}

	return nil
}
