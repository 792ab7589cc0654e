package cloud

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/qiniu/x/xlog"
	"github.com/tidwall/gjson"

	"github.com/solutions/code-cube/internal/common/utils"
	"github.com/solutions/code-cube/internal/protodef/model"
)

// DefaultRunnerEndpoint 公共piston实例。
const DefaultRunnerEndpoint = "https://emkc.org/api/v2/piston/execute"

// RunnerService 外部沙箱执行服务的客户端。请求体为
// {language, version, files:[{name, content}]}，不带鉴权参数；响应形状
// 不稳定，统一归一化为展示文本。不配置重试，也不在transport默认值
// 之外配置超时。
type RunnerService struct {
	endpoint string
	client   *http.Client
	xl       *xlog.Logger
}

func NewRunnerService(conf utils.Config) *RunnerService {
	endpoint := DefaultRunnerEndpoint
	if conf.Runner != nil && conf.Runner.Endpoint != "" {
		endpoint = conf.Runner.Endpoint
	}
	return &RunnerService{
		endpoint: endpoint,
		client:   http.DefaultClient,
		xl:       xlog.New("code-cube-runner"),
	}
}

type runnerFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type runnerRequest struct {
	Language string       `json:"language"`
	Version  string       `json:"version"`
	Files    []runnerFile `json:"files"`
}

// Run 提交当前buffer执行，返回归一化后的展示文本。任何失败（网络、
// 非JSON响应等）都转换为 "Error: <message>" 字符串，调用方把它当作
// 一次正常输出处理。
func (r *RunnerService) Run(xl *xlog.Logger, code, language string) string {
	if xl == nil {
		xl = r.xl
	}
	version := ""
	if l, ok := model.LookupLanguage(language); ok {
		version = l.Version
	}
	payload := runnerRequest{
		Language: language,
		Version:  version,
		Files: []runnerFile{
			{Name: "Main." + language, Content: code},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		xl.Errorf("failed to marshal runner request, error %v", err)
		return "Error: " + err.Error()
	}
	resp, err := r.client.Post(r.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		xl.Errorf("runner call error %v", err)
		return "Error: " + err.Error()
	}
	defer resp.Body.Close()
	res, err := io.ReadAll(resp.Body)
	if err != nil {
		xl.Errorf("failed to read runner response, error %v", err)
		return "Error: " + err.Error()
	}
	if !gjson.ValidBytes(res) {
		xl.Errorf("invalid runner response json %s", string(res))
		return "Error: invalid response json"
	}
	return normalizeRunnerResponse(res)
}

// normalizeRunnerResponse 按优先级归一化执行服务的响应：
// run对象 → stdout + 可选[stderr]块 + [exit code]尾注；其次 output/
// message 字段；否则原样返回JSON。响应另带files数组时追加Files段。
func normalizeRunnerResponse(res []byte) string {
	data := gjson.ParseBytes(res)
	result := ""
	if run := data.Get("run"); run.Exists() {
		result += run.Get("stdout").String()
		if stderr := run.Get("stderr").String(); stderr != "" {
			result += "\n[stderr]:\n" + stderr
		}
		result += fmt.Sprintf("\n[exit code]: %d", run.Get("code").Int())
	} else if data.Get("output").String() != "" || data.Get("message").String() != "" {
		out := data.Get("output").String()
		if out == "" {
			out = data.Get("message").String()
		}
		result += out
	} else {
		result += string(res)
	}
	if files := data.Get("files"); files.IsArray() {
		parts := make([]string, 0, len(files.Array()))
		for _, f := range files.Array() {
			parts = append(parts, fmt.Sprintf("%s:\n%s", f.Get("name").String(), f.Get("content").String()))
		}
		result += "\n\nFiles:\n" + strings.Join(parts, "\n\n")
	}
	if result == "" {
		result = string(res)
	}
	return result
}
