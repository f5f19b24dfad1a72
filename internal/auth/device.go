package auth

// DeviceInfo describes the client creating a session. Sent by the app on
// login and refresh so users can recognize their sessions later.
type DeviceInfo struct {
	Platform      string `json:"platform"` // iOS, Android, Web
	ClientName    string `json:"client_name,omitempty"`
	ClientVersion string `json:"client_version,omitempty"`
	DeviceName    string `json:"device_name,omitempty"` // User-set, e.g. "Dana's iPhone"
}

// IsValid reports whether the minimum device fields are present.
func (d DeviceInfo) IsValid() bool {
	return d.Platform != ""
}
