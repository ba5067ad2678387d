package adminbot

type AuthMessage struct {
	Type      string `json:"type"`
	AdminID   string `json:"admin_id"`
	AdminName string `json:"admin_name,omitempty"`
	AdminKey  string `json:"admin_key"`
}

type CommandMessage struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
	Text      string `json:"text"`
}

type AuthResult struct {
	Type   string `json:"type"`
	Ok     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
	ConnID string `json:"conn_id,omitempty"`
}

type CommandResult struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
	Ok        bool   `json:"ok"`
	Reply     string `json:"reply,omitempty"`
}

type Announcement struct {
	Type        string `json:"type"`
	Event       string `json:"event"`
	TimestampMS int64  `json:"timestamp_ms"`
	Text        string `json:"text"`
}
