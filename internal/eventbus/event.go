package eventbus

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Level 日志事件级别
type Level string

const (
	LevelInfo     Level = "INFO"
	LevelDebug    Level = "DEBUG"
	LevelWarning  Level = "WARNING"
	LevelError    Level = "ERROR"
	LevelTool     Level = "TOOL"     // 业务工具调用
	LevelThinking Level = "THINKING" // 外部推理阶段
	LevelResult   Level = "RESULT"   // 处理结果
)

// levelBadges 转录渲染用的级别标记
var levelBadges = map[Level]string{
	LevelInfo:     "💬",
	LevelDebug:    "🔍",
	LevelWarning:  "⚠️",
	LevelError:    "❌",
	LevelTool:     "🛠️",
	LevelThinking: "🤔",
	LevelResult:   "✅",
}

// Event 一条结构化日志事件。Seq 为总线历史中的单调递增位置，创建后不可变。
type Event struct {
	Seq       uint64            `json:"seq"`
	Level     Level             `json:"level"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Markdown renders the event as one transcript block for UI consumption.
func (e Event) Markdown() string {
	badge, ok := levelBadges[e.Level]
	if !ok {
		badge = "📝"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s **%s** [%s] %s", badge, e.Level, e.Timestamp.Format("15:04:05"), e.Message)

	if len(e.Metadata) > 0 {
		keys := make([]string, 0, len(e.Metadata))
		for k := range e.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("\n```json\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "%s: %s\n", k, e.Metadata[k])
		}
		b.WriteString("```")
	}
	return b.String()
}
