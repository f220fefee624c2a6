package request

type StartSessionRequest struct {
	ForceNew bool `json:"force_new"`
}
