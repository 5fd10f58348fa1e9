package services

import "context"

// TextExtractor turns PDF bytes into plain text through a document
// understanding service.
type TextExtractor interface {
	ExtractText(ctx context.Context, pdf []byte) (string, error)
}

// CredentialProvider hands out bearer tokens for a vendor API. Implementations
// reuse a token until it is close to expiry.
type CredentialProvider interface {
	Token(ctx context.Context) (string, error)
}

// PDFInspector checks that bytes are a readable PDF and reports its page count.
type PDFInspector interface {
	PageCount(pdf []byte) (int, error)
}
