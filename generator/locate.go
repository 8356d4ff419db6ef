package generator

import (
	"os"
	"path/filepath"

	"abiwasm/common"
)

// ModuleName 是默认安装位置中查找的生成器文件名。
const ModuleName = "abigen.wasm"

const appName = "abigen-wasm"

var defaultSearchDirs []string

func init() {
	if exe, err := os.Executable(); err == nil {
		folderPath := filepath.Dir(exe)
		defaultSearchDirs = append(defaultSearchDirs, folderPath, filepath.Dir(folderPath))
	}
	defaultSearchDirs = append(defaultSearchDirs, "bin", ".")
	if dir := dataDir(); dir != "" {
		defaultSearchDirs = append(defaultSearchDirs, dir)
	}
	defaultSearchDirs = append(defaultSearchDirs, filepath.Join("/", "usr", "local", "lib", appName))
}

func dataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", appName)
	}
	return ""
}

// SearchDirs 返回查找生成器的默认目录，按优先级排序。
func SearchDirs() []string {
	return append([]string(nil), defaultSearchDirs...)
}

// Locate 返回要使用的生成器路径。explicit 非空时直接返回；
// 否则按 SearchDirs 的顺序返回第一个存在的 abigen.wasm，找不到时返回空字符串。
func Locate(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return locateIn(defaultSearchDirs)
}

func locateIn(dirs []string) string {
	for _, dir := range dirs {
		candidate := filepath.Join(dir, ModuleName)
		if common.IsRegular(candidate) {
			if abs, err := filepath.Abs(candidate); err == nil {
				return abs
			}
			return candidate
		}
	}
	return ""
}
