package packets

// body for POST /devices/request-code
type RequestCodeRequest struct {
	DeviceName string `json:"device_name"`
}

// body for POST /devices/:device_id/register
type RegisterRequest struct {
	RegistrationCode string `json:"registration_code" binding:"required"`
}
