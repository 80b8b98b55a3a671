package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New 创建带 service 字段的 JSON 日志
func New(service, level string) *logrus.Entry {
	return NewWithOutput(service, level, os.Stdout)
}

func NewWithOutput(service, level string, out io.Writer) *logrus.Entry {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	log.SetOutput(out)
	log.SetLevel(ParseLevel(level))

	return log.WithField("service", service)
}

// UseFormat format 为 text 时改用文本输出，其他取值保持 JSON
func UseFormat(entry *logrus.Entry, format string) *logrus.Entry {
	if format == "text" {
		entry.Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return entry
}

// ParseLevel 无法识别的级别按 info 处理
func ParseLevel(level string) logrus.Level {
	switch level {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Nop 丢弃所有输出，测试和命令行工具使用
func Nop() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}
