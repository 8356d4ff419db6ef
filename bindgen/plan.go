package bindgen

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// outputRoot 的目录名得不出包名时平铺文件使用的包名。
const defaultFlatPackage = "bindings"

// 合约名得不出包名时使用的包名。
const defaultPackage = "contract"

// Plan 是一个产物的全部输出路径。
type Plan struct {
	Package       string // 生成代码的 Go 包名
	Type          string // 生成的绑定类型名
	GeneratedDir  string
	GeneratedFile string
	InterfaceFile string // 暂存的 ABI，生成结束后删除
	BytecodeFile  string // 暂存的字节码，生成结束后删除
}

// PackageName 只保留名字中的字母和数字并转为小写，
// 于是 '-'、'_'、'$' 和 '.' 都被去掉。
func PackageName(name string) string {
	return strings.ToLower(strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, name))
}

// packageIdent 保证 pkg 是合法的包名：为空时用 fallback，
// 不以字母开头时加前缀 "c"。
func packageIdent(pkg, fallback string) string {
	if pkg == "" {
		return fallback
	}
	if r, _ := utf8.DecodeRuneInString(pkg); !unicode.IsLetter(r) {
		return "c" + pkg
	}
	return pkg
}

// TypeIdentifier 把名字变成合法的导出标识符：只保留字母和数字，
// 为空时用 "Contract"，不以字母开头时加前缀 "C"，首字母大写。
func TypeIdentifier(name string) string {
	ident := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, name)
	if ident == "" {
		return "Contract"
	}
	runes := []rune(ident)
	if !unicode.IsLetter(runes[0]) {
		return "C" + ident
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// PlanPaths 计算产物的输出位置。它是输入的纯函数。
//
// origin 为空或 "." 时平铺输出：生成文件直接放在 outputRoot 下，
// 同目录的文件共用以 outputRoot 目录名命名的包。否则生成到
// outputRoot/<origin 所在目录>/<包名>，同一源文件中的合约各占一个兄弟目录。
func PlanPaths(name, origin, outputRoot string) Plan {
	var (
		pkg string
		dir string
	)
	if origin == "" || origin == "." {
		dir = outputRoot
		pkg = packageIdent(PackageName(filepath.Base(filepath.Clean(outputRoot))), defaultFlatPackage)
	} else {
		pkg = packageIdent(PackageName(name), defaultPackage)
		dir = filepath.Join(outputRoot, filepath.Dir(filepath.FromSlash(origin)), pkg)
	}
	return Plan{
		Package:       pkg,
		Type:          TypeIdentifier(name),
		GeneratedDir:  dir,
		GeneratedFile: filepath.Join(dir, name+".go"),
		InterfaceFile: filepath.Join(outputRoot, name+".json"),
		BytecodeFile:  filepath.Join(outputRoot, name+".bin"),
	}
}
