package handlers

// Stable error codes returned in the "error" field. Messages are presentation
// only; clients branch on the code.
const (
	codeBadRequest         = "bad_request"
	codeEmptyPrompt        = "empty_prompt"
	codeInvalidSettings    = "invalid_settings"
	codeUnauthorized       = "unauthorized"
	codeInsufficientCredit = "insufficient_credit"
	codeAccountNotFound    = "account_not_found"
	codeJobNotFound        = "job_not_found"
	codeNotConfigured      = "not_configured"
	codeProviderError      = "provider_error"
	codeInternal           = "internal"
)

var messages = map[string]map[string]string{
	"en": {
		codeBadRequest:         "invalid request payload",
		codeEmptyPrompt:        "prompt must not be empty",
		codeInvalidSettings:    "unsupported video settings",
		codeUnauthorized:       "missing or invalid credentials",
		codeInsufficientCredit: "insufficient credits",
		codeAccountNotFound:    "account not found",
		codeJobNotFound:        "video task not found",
		codeNotConfigured:      "video service is not configured",
		codeProviderError:      "video generation request failed",
		codeInternal:           "internal server error",
	},
	"zh": {
		codeBadRequest:         "请求参数无效",
		codeEmptyPrompt:        "提示词不能为空",
		codeInvalidSettings:    "不支持的视频参数",
		codeUnauthorized:       "缺少或无效的凭证",
		codeInsufficientCredit: "积分不足",
		codeAccountNotFound:    "账户不存在",
		codeJobNotFound:        "视频任务不存在",
		codeNotConfigured:      "视频服务未配置",
		codeProviderError:      "视频生成请求失败",
		codeInternal:           "服务器内部错误",
	},
}

func localizedMessage(locale, code string) string {
	catalog, ok := messages[locale]
	if !ok {
		catalog = messages["en"]
	}
	if msg, ok := catalog[code]; ok {
		return msg
	}
	return messages["en"][codeInternal]
}
