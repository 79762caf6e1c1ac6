package pipeline

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

var contentExtensions = map[string]bool{".md": true, ".mdx": true}

// IsContentFile reports whether path has a markdown extension.
func IsContentFile(path string) bool {
	return contentExtensions[strings.ToLower(filepath.Ext(path))]
}

// Discover returns all markdown files under root in lexical order. Hidden
// directories and node_modules are skipped.
func Discover(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || name == "node_modules") {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !IsContentFile(name) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// Classifier decides which files require tagging from their directory
// segments.
type Classifier struct {
	dirs map[string]bool
}

// DefaultContentDirs lists the content-type directories tagged by default.
var DefaultContentDirs = []string{"blog"}

// NewClassifier returns a Classifier for dirs, or DefaultContentDirs when
// dirs is empty.
func NewClassifier(dirs []string) Classifier {
	if len(dirs) == 0 {
		dirs = DefaultContentDirs
	}
	c := Classifier{dirs: make(map[string]bool, len(dirs))}
	for _, d := range dirs {
		d = strings.Trim(strings.TrimSpace(d), "/")
		if d != "" {
			c.dirs[d] = true
		}
	}
	return c
}

// Applies reports whether the file at path sits under one of the
// content-type directories. Every directory segment of path counts, so
// callers pass the absolute path to match directories above the run root.
func (c Classifier) Applies(path string) bool {
	dir := filepath.ToSlash(filepath.Dir(filepath.Clean(path)))
	if dir == "." {
		return false
	}
	for _, seg := range strings.Split(dir, "/") {
		if c.dirs[seg] {
			return true
		}
	}
	return false
}
