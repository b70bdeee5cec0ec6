package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

const defaultReadMaxChars = 20000

// FilesystemCapability confines every operation to a workspace root.
// Relative paths resolve against the root; anything that escapes it,
// through ".." or a symlink, is rejected as a capability error.
type FilesystemCapability struct {
	Root string
}

func NewFilesystem(root string) *FilesystemCapability {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		absRoot = root
	}
	if resolved, err := filepath.EvalSymlinks(absRoot); err == nil {
		absRoot = resolved
	}
	return &FilesystemCapability{Root: absRoot}
}

func (f *FilesystemCapability) Name() string { return "filesystem" }

func (f *FilesystemCapability) Actions() []string {
	return []string{"list", "read", "write", "append", "mkdir", "delete"}
}

func (f *FilesystemCapability) Execute(ctx context.Context, sessionID, action string, params Params, confirm bool) Result {
	switch action {
	case "list":
		path := params.String("path")
		if path == "" {
			path = "."
		}
		return f.listDir(path)
	case "read":
		return f.readFile(params.String("path"), params.Int("max_chars", defaultReadMaxChars))
	case "write":
		return f.writeFile(params.String("path"), params.String("content"), false)
	case "append":
		return f.writeFile(params.String("path"), params.String("content"), true)
	case "mkdir":
		return f.mkdir(params.String("path"))
	case "delete":
		if !confirm {
			return Fail("Deletion requires confirm=true.")
		}
		return f.deletePath(params.String("path"))
	default:
		return Fail("Unsupported tool/action: filesystem/%s", action)
	}
}

func (f *FilesystemCapability) listDir(relPath string) Result {
	target, err := f.resolve(relPath)
	if err != nil {
		return Fail("%v", err)
	}
	entries, err := os.ReadDir(target)
	if err != nil {
		return Fail("Directory not found.")
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	out := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		item := map[string]any{
			"name": entry.Name(),
			"kind": "file",
		}
		if entry.IsDir() {
			item["kind"] = "dir"
		} else if info, err := entry.Info(); err == nil {
			item["size"] = info.Size()
		}
		out = append(out, item)
	}
	return OK(map[string]any{"path": target, "entries": out})
}

func (f *FilesystemCapability) readFile(relPath string, maxChars int) Result {
	target, err := f.resolve(relPath)
	if err != nil {
		return Fail("%v", err)
	}
	info, err := os.Stat(target)
	if err != nil || info.IsDir() {
		return Fail("File not found.")
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return Fail("Failed to read file: %v", err)
	}
	if !utf8.Valid(data) {
		return Fail("File is not UTF-8 text.")
	}

	content := string(data)
	truncated := len(content) > maxChars
	if truncated {
		content = content[:maxChars]
	}
	return OK(map[string]any{"path": target, "content": content, "truncated": truncated})
}

func (f *FilesystemCapability) writeFile(relPath, content string, append bool) Result {
	target, err := f.resolve(relPath)
	if err != nil {
		return Fail("%v", err)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return Fail("Failed to create parent directory: %v", err)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if append {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	handle, err := os.OpenFile(target, flags, 0644)
	if err != nil {
		return Fail("Failed to write file: %v", err)
	}
	defer handle.Close()
	if _, err := handle.WriteString(content); err != nil {
		return Fail("Failed to write file: %v", err)
	}
	return OK(map[string]any{"path": target})
}

func (f *FilesystemCapability) mkdir(relPath string) Result {
	target, err := f.resolve(relPath)
	if err != nil {
		return Fail("%v", err)
	}
	if err := os.MkdirAll(target, 0755); err != nil {
		return Fail("Failed to create directory: %v", err)
	}
	return OK(map[string]any{"path": target})
}

func (f *FilesystemCapability) deletePath(relPath string) Result {
	target, err := f.resolve(relPath)
	if err != nil {
		return Fail("%v", err)
	}
	info, err := os.Lstat(target)
	if err != nil {
		return Fail("Path not found.")
	}
	// Directory deletion is always rejected, confirmed or not.
	if info.IsDir() {
		return Fail("Directory deletion is disabled.")
	}
	if err := os.Remove(target); err != nil {
		return Fail("Failed to delete: %v", err)
	}
	return OK(map[string]any{"path": target})
}

// resolve maps a relative path into the workspace root and rejects any
// resolved path that escapes it. Symlinks are evaluated on the deepest
// existing ancestor so a link out of the root cannot slip through.
func (f *FilesystemCapability) resolve(relPath string) (string, error) {
	candidate := filepath.Join(f.Root, relPath)

	resolved, err := evalExisting(candidate)
	if err != nil {
		return "", fmt.Errorf("Path escapes workspace root.")
	}

	rel, err := filepath.Rel(f.Root, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("Path escapes workspace root.")
	}
	return candidate, nil
}

// evalExisting resolves symlinks for the longest existing prefix of path
// and re-joins the missing suffix.
func evalExisting(path string) (string, error) {
	suffix := ""
	current := filepath.Clean(path)
	for {
		resolved, err := filepath.EvalSymlinks(current)
		if err == nil {
			return filepath.Join(resolved, suffix), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", err
		}
		suffix = filepath.Join(filepath.Base(current), suffix)
		current = parent
	}
}
