package domain

// Turn is one entry of the conversation history submitted for completion.
type Turn struct {
	Role   MessageRole
	Text   string
	Images []string
}

// ContentPartType tags a segment of a composite provider message.
type ContentPartType string

const (
	ContentPartText  ContentPartType = "text"
	ContentPartImage ContentPartType = "image_url"
)

// ContentPart is one segment of a composite message.
type ContentPart struct {
	Type     ContentPartType
	Text     string
	ImageURL string
}

// ProviderMessage is a provider-ready message. When Parts is nil the message
// is plain text carried in Text; otherwise Parts holds one text segment
// followed by one image segment per image reference.
type ProviderMessage struct {
	Role  MessageRole
	Text  string
	Parts []ContentPart
}

// IsComposite reports whether the message uses the multi-part form.
func (m ProviderMessage) IsComposite() bool {
	return m.Parts != nil
}

// CompletionRequest is everything the provider receives for one call.
type CompletionRequest struct {
	Messages    []ProviderMessage
	MaxTokens   int
	Temperature float32
}
