package structparse

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path"
	"regexp"
	"strings"
)

// ErrStructNotFound 文件中没有指定的结构体
var ErrStructNotFound = errors.New("未找到结构体")

// ParseStruct 解析指定文件中的结构体
func ParseStruct(filename, structName string) (*StructInfo, error) {
	return parseStruct(filename, structName, map[string]bool{structName: true})
}

func parseStruct(filename, structName string, stack map[string]bool) (*StructInfo, error) {
	fset := token.NewFileSet()
	node, err := parser.ParseFile(fset, filename, nil, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("解析文件失败: %w", err)
	}

	target := findStruct(node, structName)
	if target == nil {
		return nil, fmt.Errorf("%w %s", ErrStructNotFound, structName)
	}

	info := &StructInfo{
		Name:        structName,
		PackageName: node.Name.Name,
		FilePath:    filename,
		Imports:     collectImports(node),
	}
	fields, err := parseFields(target.Fields.List, info, stack)
	if err != nil {
		return nil, err
	}
	info.Fields = fields
	return info, nil
}

// findStruct 查找顶层声明的结构体，包括分组声明
func findStruct(file *ast.File, name string) *ast.StructType {
	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}
		for _, spec := range genDecl.Specs {
			typeSpec, ok := spec.(*ast.TypeSpec)
			if !ok || typeSpec.Name.Name != name {
				continue
			}
			if st, ok := typeSpec.Type.(*ast.StructType); ok {
				return st
			}
		}
	}
	return nil
}

var majorVersionRegex = regexp.MustCompile(`^v[0-9]+$`)

// collectImports 收集文件的导入，key 为源码中使用的包名
// 未写别名时按路径推断包名，/v2 这类版本后缀取上一级
func collectImports(file *ast.File) map[string]string {
	imports := make(map[string]string, len(file.Imports))
	for _, imp := range file.Imports {
		importPath := strings.Trim(imp.Path.Value, `"`)
		name := path.Base(importPath)
		if majorVersionRegex.MatchString(name) {
			name = path.Base(path.Dir(importPath))
		}
		if imp.Name != nil {
			name = imp.Name.Name
		}
		if name == "_" || name == "." {
			continue
		}
		imports[name] = importPath
	}
	return imports
}
