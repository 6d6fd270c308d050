package assistant

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// streamReader 解析上游 SSE 流并按顺序发出事件
// 每个事件块形如：
//
//	event: thread.message.delta
//	data: {...}
//
// 收到 done 哨兵或流结束后关闭通道
func streamReader(body io.ReadCloser, out chan<- RunEvent) {
	defer close(out)
	defer body.Close()

	scanner := bufio.NewScanner(body)
	// 事件体可能很大，放宽缓冲
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	var event string
	var data strings.Builder

	for scanner.Scan() {
		line := scanner.Text()

		// 空行结束一个事件块
		if line == "" {
			if data.Len() > 0 || event != "" {
				payload := data.String()
				if event == "done" || payload == "[DONE]" {
					return
				}
				if event != "" {
					out <- RunEvent{Event: event, Data: json.RawMessage(payload)}
				}
				event = ""
				data.Reset()
			}
			continue
		}

		if strings.HasPrefix(line, "event:") {
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			continue
		}
		if strings.HasPrefix(line, "data:") {
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
			continue
		}
		// 其余行（注释、retry 等）忽略
	}

	// 流在块中途断开时发出已累积的事件
	if event != "" && event != "done" && data.Len() > 0 && data.String() != "[DONE]" {
		out <- RunEvent{Event: event, Data: json.RawMessage(data.String())}
	}
}
