package assistant

import "strings"

// 两份独立维护的扩展名白名单，允许重叠：
// 同一扩展名可以同时启用代码执行和文档检索

// codeInterpreterTypes 可交给代码执行工具处理的格式
var codeInterpreterTypes = []string{
	"c", "cpp", "cs", "css", "csv", "doc", "docx", "gif", "html", "java",
	"jpeg", "jpg", "js", "json", "md", "pdf", "php", "pkl", "png", "pptx",
	"py", "rb", "tar", "tex", "ts", "txt", "xlsx", "xml", "zip",
}

// fileSearchTypes 可被文档检索工具索引的格式
var fileSearchTypes = []string{
	"c", "cpp", "cs", "css", "doc", "docx", "go", "html", "java", "js",
	"json", "md", "pdf", "php", "pptx", "py", "rb", "sh", "tex", "ts", "txt",
}

// Capabilities 附件解析出的工具能力
type Capabilities struct {
	CodeInterpreter bool
	FileSearch      bool
}

// Tools 转换为消息附件上的工具声明
func (c Capabilities) Tools() []AttachmentTool {
	var tools []AttachmentTool
	if c.CodeInterpreter {
		tools = append(tools, AttachmentTool{Type: "code_interpreter"})
	}
	if c.FileSearch {
		tools = append(tools, AttachmentTool{Type: "file_search"})
	}
	return tools
}

// Classify 按文件名的扩展名解析工具能力
// 没有扩展名或不在白名单内时两项能力都为否
func Classify(filename string) Capabilities {
	ext := extensionOf(filename)
	if ext == "" {
		return Capabilities{}
	}
	return Capabilities{
		CodeInterpreter: containsString(codeInterpreterTypes, ext),
		FileSearch:      containsString(fileSearchTypes, ext),
	}
}

// ValidExtension 是否属于任一白名单，上传入口用它做前置校验
func ValidExtension(filename string) bool {
	caps := Classify(filename)
	return caps.CodeInterpreter || caps.FileSearch
}

// extensionOf 取最后一个点号之后的小写子串，没有点号返回空串
func extensionOf(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
