package errcode

// 错误码约定：
// - 0：无错误
// - 4xxx：请求或业务错误，与 HTTP 状态码的后两位对应
// - 5xxx：系统错误（需要中断流程）
const (
	OK              = 0
	BadRequest      = 4000
	Forbidden       = 4003
	ResourceMissing = 4004
	Busy            = 4009
	StaleEdit       = 4012
	TooLarge        = 4013
	Unsupported     = 4015
	Invalid         = 4022
	TooManyRequests = 4029
	SystemError     = 5000
	RenderFailed    = 5001
	Unavailable     = 5003
)
