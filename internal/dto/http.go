package dto

type BaseResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func NewBaseResponse(code int, message string, data interface{}) *BaseResponse {
	return &BaseResponse{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

type RootResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type RunJobRequest struct {
	JobType string `param:"type" json:"job_type" validate:"required,oneof=market_data_collector signal_monitor daily_report"`
}
