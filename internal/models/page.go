package models

// Page is a render request for one step of the donation flow.
type Page struct {
	Platform string       `json:"platform"`
	Header   Translatable `json:"header"`
	Body     Body         `json:"body"`
	Progress int          `json:"progress"`
}

// Body is one of FilePrompt, ConfirmPrompt or ConsentForm.
type Body interface {
	body()
}

type FilePrompt struct {
	Description Translatable `json:"description"`
	Extensions  string       `json:"extensions"`
}

type ConfirmPrompt struct {
	Text   Translatable `json:"text"`
	Ok     Translatable `json:"ok"`
	Cancel Translatable `json:"cancel"`
}

// ConsentForm lists the derived tables the user may edit before donating.
// MetaTables hold the session log.
type ConsentForm struct {
	Tables      []ExtractionResult `json:"tables"`
	MetaTables  []ExtractionResult `json:"metaTables"`
	Description Translatable       `json:"description"`
}

func (FilePrompt) body()    {}
func (ConfirmPrompt) body() {}
func (ConsentForm) body()   {}

// LogEntry is one line of the user-visible session log.
type LogEntry struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
