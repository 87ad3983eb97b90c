package logkit

// msgKey identifies a built-in message string. Every key must be present
// in every catalog; text falls back to English for safety.
type msgKey int

const (
	msgStartCall msgKey = iota
	msgEndCall
	msgStartAsyncCall
	msgEndAsyncCall
	msgCalling
	msgReturned
	msgDefaultFailure
	msgLevelAdded
	msgLevelExists
	msgLevelUnknown
	msgRemoteSendFailed
	msgRemoteQueueFull
	msgUnhandledPanic
	msgShutdownTimeout
)

var catalogs = map[Language]map[msgKey]string{
	LanguageEnglish: {
		msgStartCall:        "----------- Start Function Call -----------",
		msgEndCall:          "----------- End Function Call -----------",
		msgStartAsyncCall:   "----------- Start Async Function Call -----------",
		msgEndAsyncCall:     "----------- End Async Function Call -----------",
		msgCalling:          "calling function",
		msgReturned:         "function returned",
		msgDefaultFailure:   "An exception occurred. Please check the logs.",
		msgLevelAdded:       "custom log level added",
		msgLevelExists:      "log level already exists, skipping",
		msgLevelUnknown:     "unknown log level, falling back to info",
		msgRemoteSendFailed: "failed to send log to remote server",
		msgRemoteQueueFull:  "remote log queue full, dropping record",
		msgUnhandledPanic:   "unhandled panic",
		msgShutdownTimeout:  "logger shutdown timeout exceeded",
	},
	LanguageChinese: {
		msgStartCall:        "----------- 开始函数调用 -----------",
		msgEndCall:          "----------- 结束函数调用 -----------",
		msgStartAsyncCall:   "----------- 开始异步函数调用 -----------",
		msgEndAsyncCall:     "----------- 结束异步函数调用 -----------",
		msgCalling:          "调用函数",
		msgReturned:         "函数返回",
		msgDefaultFailure:   "发生异常，请检查日志。",
		msgLevelAdded:       "自定义日志级别已添加",
		msgLevelExists:      "日志级别已存在，跳过",
		msgLevelUnknown:     "未知日志级别，回退为 info",
		msgRemoteSendFailed: "发送日志到远程服务器失败",
		msgRemoteQueueFull:  "远程日志队列已满，丢弃记录",
		msgUnhandledPanic:   "未处理的异常",
		msgShutdownTimeout:  "日志关闭超时",
	},
}

// text resolves a built-in message in the service's configured language.
func (s *Service) text(k msgKey) string {
	lang := LanguageEnglish
	if s != nil && s.cfg != nil {
		lang = s.cfg.Language
	}
	if m, ok := catalogs[lang]; ok {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return catalogs[LanguageEnglish][k]
}
