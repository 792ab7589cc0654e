package model

// Language 受支持的执行语言，value 为editor与执行服务共用的wire标签。
type Language struct {
	Label   string `json:"label"`
	Value   string `json:"value"`
	Version string `json:"version"`
}

const DefaultLanguage = "javascript"

// Languages 静态语言表，顺序即前端下拉顺序。版本号与执行服务运行时对应。
var Languages = []Language{
	{Label: "JavaScript", Value: "javascript", Version: "18.15.0"},
	{Label: "Python", Value: "python", Version: "3.10.0"},
	{Label: "Java", Value: "java", Version: "15.0.2"},
	{Label: "C++", Value: "cpp", Version: "10.2.0"},
	{Label: "C#", Value: "csharp", Version: "6.12.0"},
	{Label: "Go", Value: "go", Version: "1.20.2"},
	{Label: "Ruby", Value: "ruby", Version: "3.0.0"},
	{Label: "PHP", Value: "php", Version: "8.2.3"},
	{Label: "Rust", Value: "rust", Version: "1.68.2"},
	{Label: "TypeScript", Value: "typescript", Version: "5.0.3"},
}

// LookupLanguage 按wire标签查表，查不到时ok为false、version为空。
// 服务端不强制校验语言集合，与原行为保持一致。
func LookupLanguage(value string) (Language, bool) {
	for _, l := range Languages {
		if l.Value == value {
			return l, true
		}
	}
	return Language{}, false
}
