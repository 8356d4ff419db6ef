// 包 bindgen 把一批合约产物变成 Go 绑定：收集输入文件，规划输出路径，
// 然后逐个调用外部生成器。
package bindgen

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	ErrNoInputFiles = errors.New("no JSON input files found")
)

const inputExt = ".json"

// Collect 把命令行给出的文件和目录展开为候选 JSON 文件列表。
//
// 不存在的输入只产生警告。目录被递归遍历（不跟随符号链接目录），
// 只保留扩展名为 .json（不区分大小写）的普通文件。结果按绝对路径去重并排序。
// 什么都没剩下时返回 ErrNoInputFiles。
func Collect(inputs []string) ([]string, []string, error) {
	var (
		warnings []string
		seen     = make(map[string]struct{})
		files    []string
	)
	add := func(path string) {
		if !strings.EqualFold(filepath.Ext(path), inputExt) {
			return
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = filepath.Clean(path)
		}
		if _, ok := seen[abs]; ok {
			return
		}
		seen[abs] = struct{}{}
		files = append(files, abs)
	}

	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			if os.IsNotExist(err) {
				warnings = append(warnings, fmt.Sprintf("%s: no such file or directory", input))
			} else {
				warnings = append(warnings, fmt.Sprintf("%s: %v", input, err))
			}
			continue
		}
		if !info.IsDir() {
			add(input)
			continue
		}
		err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// 读不了的子目录跳过，不影响其他输入
				warnings = append(warnings, fmt.Sprintf("%s: %v", path, err))
				if d != nil && d.IsDir() && path != input {
					return fs.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() {
				add(path)
			}
			return nil
		})
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", input, err))
		}
	}
	if len(files) == 0 {
		return nil, warnings, ErrNoInputFiles
	}
	sort.Strings(files)
	return files, warnings, nil
}
