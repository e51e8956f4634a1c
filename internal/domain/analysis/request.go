package analysis

// Kind enum, doubles as the history "Type" label
type Kind string

const (
	KindQuestion Kind = "QnA"
	KindURL      Kind = "URL"
	KindSMS      Kind = "SMS"
	KindEmail    Kind = "Email"
	KindFile     Kind = "File"
	KindIP       Kind = "IP"
	KindBreach   Kind = "Breach"
)

// Request is one of the request variants below.
type Request interface {
	Kind() Kind
}

type Question struct {
	Text string
}

type URLCheck struct {
	URL string
	// Host is the ASCII (punycode) form of the URL host.
	Host string
}

type SMSCheck struct {
	Message string
	// Sender is an E.164 phone number, empty when the caller did not supply one.
	Sender string
}

type EmailCheck struct {
	Subject string
	Body    string
}

type FileCheck struct {
	Filename string
	Content  []byte
	Hash     string
}

type IPCheck struct {
	IP string
}

type BreachCheck struct {
	Email string
}

func (Question) Kind() Kind    { return KindQuestion }
func (URLCheck) Kind() Kind    { return KindURL }
func (SMSCheck) Kind() Kind    { return KindSMS }
func (EmailCheck) Kind() Kind  { return KindEmail }
func (FileCheck) Kind() Kind   { return KindFile }
func (IPCheck) Kind() Kind     { return KindIP }
func (BreachCheck) Kind() Kind { return KindBreach }

// NewFileCheck hashes content up front so the digest is fixed before any lookup.
func NewFileCheck(filename string, content []byte) FileCheck {
	return FileCheck{Filename: filename, Content: content, Hash: ContentHash(content)}
}
