package common

import (
	"os"
	"path/filepath"
)

// IsRegular 报告 path 是否是一个普通文件（跟随符号链接）。
func IsRegular(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// IsAncestor 报告 dir 是否等于 path 或是 path 的祖先目录。两者都应是绝对路径。
func IsAncestor(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !filepath.IsAbs(rel) && !startsWithParent(rel))
}

func startsWithParent(rel string) bool {
	return len(rel) >= 3 && rel[:2] == ".." && os.IsPathSeparator(rel[2])
}
