package common

const (
	KEY_LAST_QUOTE  = "last_quote:%s"
	KEY_FEED_STATUS = "feed_status"
)

const (
	PROVIDER_BYBIT         = "BYBIT"
	PROVIDER_ALPHA_VANTAGE = "ALPHA_VANTAGE"
)

const (
	KEY_LOG_HOOK_SEND_ALERT = "send_alert"
)
