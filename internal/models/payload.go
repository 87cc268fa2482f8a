package models

// PayloadType tags a response coming back from the render boundary.
type PayloadType string

const (
	PayloadFile  PayloadType = "PayloadString"
	PayloadTrue  PayloadType = "PayloadTrue"
	PayloadFalse PayloadType = "PayloadFalse"
	PayloadJSON  PayloadType = "PayloadJSON"
	PayloadVoid  PayloadType = "PayloadVoid"
)

// Response is what the boundary hands back after a render or a donation.
// Value is the file path for PayloadFile and the serialized approval for
// PayloadJSON.
type Response struct {
	Type  PayloadType `json:"__type__"`
	Value string      `json:"value,omitempty"`
}

func FileResponse(path string) Response {
	return Response{Type: PayloadFile, Value: path}
}

func ConfirmResponse(ok bool) Response {
	if ok {
		return Response{Type: PayloadTrue}
	}
	return Response{Type: PayloadFalse}
}

func JSONResponse(value string) Response {
	return Response{Type: PayloadJSON, Value: value}
}

func VoidResponse() Response {
	return Response{Type: PayloadVoid}
}
